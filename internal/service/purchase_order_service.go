package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/mapper"
	"github.com/adicipta/procure-api/internal/repository"
)

// PurchaseOrderService owns the purchase order lifecycle: submission,
// approvals, rejection and cancellation. Every mutation runs in a single
// transaction together with its audit entry and financial postings.
type PurchaseOrderService struct {
	db         *gorm.DB
	poRepo     *repository.PurchaseOrderRepository
	soRepo     *repository.SalesOrderRepository
	reconciler *ReconcilerService
	sequences  *SequenceService
	posting    *PostingService
	audit      *AuditLogService
	logger     *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	db *gorm.DB,
	poRepo *repository.PurchaseOrderRepository,
	soRepo *repository.SalesOrderRepository,
	reconciler *ReconcilerService,
	sequences *SequenceService,
	posting *PostingService,
	audit *AuditLogService,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		db:         db,
		poRepo:     poRepo,
		soRepo:     soRepo,
		reconciler: reconciler,
		sequences:  sequences,
		posting:    posting,
		audit:      audit,
		logger:     logger,
	}
}

// Create validates and submits a new purchase order against a sales
// order. Quantities are reconciled against what earlier non-rejected
// purchase orders already claimed, the code is minted and the order,
// its items, the audit entry and a possible sales order status flip all
// commit atomically.
func (s *PurchaseOrderService) Create(ctx context.Context, req domain.CreatePurchaseOrderRequest, meta RequestMeta) (*domain.PurchaseOrderDTO, error) {
	if req.SOCode == "" || req.SupplierName == "" {
		return nil, fmt.Errorf("%w: sales order code and supplier are required", ErrValidation)
	}
	priority := domain.PurchaseOrderPriority(req.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, req.Priority)
	}

	var poCode string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the sales order header so concurrent submissions serialize
		// and the processing flip below decides on a current row.
		so, err := s.soRepo.WithTx(tx).GetByCodeForUpdate(ctx, req.SOCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSalesOrderNotFound
			}
			return err
		}
		if so.Status != domain.SalesOrderStatusOpen && so.Status != domain.SalesOrderStatusProcessing {
			return ErrSalesOrderNotProcurable
		}

		kept, err := s.reconciler.ValidateRequest(ctx, tx, so.SOCode, req.Items)
		if err != nil {
			return err
		}

		code, _, err := s.sequences.NextTx(ctx, tx, domain.DocTypePurchaseOrder, so.CompanyCode, req.ProjectCode)
		if err != nil {
			return err
		}
		poCode = code

		po := &domain.PurchaseOrder{
			POCode:       poCode,
			SOCode:       so.SOCode,
			SupplierName: req.SupplierName,
			Status:       domain.StatusSubmitted,
			Priority:     priority,
			CompanyCode:  so.CompanyCode,
			ProjectCode:  req.ProjectCode,
			Notes:        req.Notes,
		}
		if user, ok := auth.FromContext(ctx); ok {
			po.SubmittedByID = user.UserID
			po.SubmittedByName = user.Name
		}

		total := decimal.Zero
		for i, item := range kept {
			line := domain.PurchaseOrderItem{
				POItemCode:    fmt.Sprintf("%s-%02d", poCode, i+1),
				POCode:        poCode,
				ProductCode:   item.ProductCode,
				ProductName:   item.ProductName,
				Quantity:      item.Quantity,
				PurchasePrice: item.PurchasePrice,
			}
			total = total.Add(line.Subtotal())
			po.Items = append(po.Items, line)
		}
		po.TotalAmount = total

		if err := s.poRepo.WithTx(tx).Create(ctx, po); err != nil {
			return err
		}

		if err := s.audit.LogTx(ctx, tx, LogEntry{
			Action:     domain.AuditActionCreate,
			EntityType: "purchase_order",
			EntityCode: poCode,
			NewValues:  po,
			Notes:      fmt.Sprintf("submitted against %s", so.SOCode),
			Meta:       meta,
		}); err != nil {
			return err
		}

		// First non-rejected PO against the SO moves it to processing
		if so.Status == domain.SalesOrderStatusOpen {
			soRepo := s.soRepo.WithTx(tx)
			if err := soRepo.UpdateStatus(ctx, so.SOCode, domain.SalesOrderStatusProcessing); err != nil {
				return err
			}
			if err := s.audit.LogTx(ctx, tx, LogEntry{
				Action:     domain.AuditActionStatusChange,
				EntityType: "sales_order",
				EntityCode: so.SOCode,
				OldValues:  map[string]interface{}{"status": domain.SalesOrderStatusOpen},
				NewValues:  map[string]interface{}{"status": domain.SalesOrderStatusProcessing},
				Notes:      fmt.Sprintf("first purchase order %s submitted", poCode),
				Meta:       meta,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order submitted",
		zap.String("po_code", poCode),
		zap.String("so_code", req.SOCode),
	)
	return s.GetByCode(ctx, poCode)
}

// Transition applies a named lifecycle action (approve_spv,
// approve_finance, reject) to a purchase order. The order row is locked
// for the duration of the transaction, so concurrent transitions
// serialize and the loser fails its precondition check.
func (s *PurchaseOrderService) Transition(ctx context.Context, poCode string, req domain.TransitionPurchaseOrderRequest, meta RequestMeta) (*domain.PurchaseOrderDTO, error) {
	action := domain.TransitionAction(req.Action)
	if !action.IsValid() || action == domain.ActionPay {
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, req.Action)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.WithTx(tx).GetByCodeForUpdate(ctx, poCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseOrderNotFound
			}
			return err
		}

		oldStatus := po.Status
		nextStatus, ok := domain.NextStatus(oldStatus, action)
		if !ok {
			return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, oldStatus)
		}

		now := time.Now().UTC()
		actorName := ""
		if user, ok := auth.FromContext(ctx); ok {
			actorName = user.Name
			if actorName == "" {
				actorName = user.UserID
			}
		}

		switch action {
		case domain.ActionApproveSpv:
			po.SpvApprovedBy = actorName
			po.SpvApprovedAt = &now
			if req.Notes != "" {
				po.ApprovalNotes = req.Notes
			}
		case domain.ActionApproveFinance:
			po.FinanceApprovedBy = actorName
			po.FinanceApprovedAt = &now
			if req.Notes != "" {
				po.ApprovalNotes = req.Notes
			}
			apCode, err := s.posting.CreateAPInvoiceTx(ctx, tx, po)
			if err != nil {
				return err
			}
			po.APCode = apCode
		case domain.ActionReject:
			reason := req.Reason
			if reason == "" {
				reason = req.Notes
			}
			if reason == "" {
				return ErrRejectionReasonRequired
			}
			po.RejectedBy = actorName
			po.RejectedAt = &now
			po.RejectionReason = reason
		}
		po.Status = nextStatus

		if err := s.poRepo.WithTx(tx).Update(ctx, po); err != nil {
			return err
		}

		notes := fmt.Sprintf("%s -> %s (%s)", oldStatus, nextStatus, action)
		if req.Notes != "" {
			notes += ": " + req.Notes
		}
		return s.audit.LogTx(ctx, tx, LogEntry{
			Action:     domain.AuditActionStatusChange,
			EntityType: "purchase_order",
			EntityCode: po.POCode,
			OldValues:  map[string]interface{}{"status": oldStatus},
			NewValues:  map[string]interface{}{"status": nextStatus},
			Notes:      notes,
			Meta:       meta,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order transitioned",
		zap.String("po_code", poCode),
		zap.String("action", string(action)),
	)
	return s.GetByCode(ctx, poCode)
}

// Cancel soft-deletes a purchase order that is still waiting for its
// first approval.
func (s *PurchaseOrderService) Cancel(ctx context.Context, poCode string, meta RequestMeta) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.WithTx(tx).GetByCodeForUpdate(ctx, poCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseOrderNotFound
			}
			return err
		}
		if po.Status != domain.StatusSubmitted {
			return ErrPurchaseOrderNotCancellable
		}
		if err := s.poRepo.WithTx(tx).SoftDelete(ctx, poCode); err != nil {
			return err
		}
		return s.audit.LogTx(ctx, tx, LogEntry{
			Action:     domain.AuditActionDelete,
			EntityType: "purchase_order",
			EntityCode: poCode,
			OldValues:  po,
			Notes:      "cancelled while submitted",
			Meta:       meta,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("purchase order cancelled", zap.String("po_code", poCode))
	return nil
}

// GetByCode loads a purchase order as a DTO
func (s *PurchaseOrderService) GetByCode(ctx context.Context, poCode string) (*domain.PurchaseOrderDTO, error) {
	po, err := s.poRepo.GetByCode(ctx, poCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, err
	}
	return mapper.ToPurchaseOrderDTO(po), nil
}

// List returns a page of purchase orders as DTOs
func (s *PurchaseOrderService) List(ctx context.Context, filter repository.PurchaseOrderFilter, page, pageSize int, sort repository.SortConfig) ([]domain.PurchaseOrderDTO, int64, error) {
	orders, total, err := s.poRepo.List(ctx, filter, page, pageSize, sort)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]domain.PurchaseOrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *mapper.ToPurchaseOrderDTO(&orders[i]))
	}
	return dtos, total, nil
}

// GetAuditTrail returns the lifecycle history of a purchase order
func (s *PurchaseOrderService) GetAuditTrail(ctx context.Context, poCode string) ([]domain.AuditLogDTO, error) {
	if _, err := s.poRepo.GetByCode(ctx, poCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, err
	}
	entries, err := s.audit.GetByEntity(ctx, "purchase_order", poCode)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.AuditLogDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, *mapper.ToAuditLogDTO(&entries[i]))
	}
	return dtos, nil
}
