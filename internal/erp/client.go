package erp

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/config"
)

const (
	defaultMaxRetries  = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 10 * time.Second
	retryBackoffFactor = 2
	healthCheckTimeout = 5 * time.Second
)

// SalesOrderRecord is one sales order as the back office reports it
type SalesOrderRecord struct {
	SOCode       string
	CustomerName string
	CompanyCode  string
	OrderDate    time.Time
	Lines        []SalesOrderLineRecord
}

// SalesOrderLineRecord is one demand line of an ERP sales order
type SalesOrderLineRecord struct {
	ItemCode    string
	ProductCode string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Client is a read-only connection to the legacy ERP MSSQL database
// that sales orders originate from.
type Client struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.ERPConfig
}

// NewClient connects to the ERP database. Returns (nil, nil) when the
// integration is disabled or incompletely configured, so callers can
// treat the ERP as an optional collaborator.
func NewClient(cfg *config.ERPConfig, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled {
		logger.Info("erp integration disabled")
		return nil, nil
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("erp integration enabled but credentials are incomplete, skipping")
		return nil, nil
	}

	connString, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("building erp connection string: %w", err)
	}

	var db *sql.DB
	delay := initialRetryDelay
	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		db, err = sql.Open("sqlserver", connString)
		if err == nil {
			db.SetMaxOpenConns(5)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(30 * time.Minute)

			pingCtx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			err = db.PingContext(pingCtx)
			cancel()
			if err == nil {
				break
			}
			db.Close()
		}
		logger.Warn("erp connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < defaultMaxRetries {
			time.Sleep(delay)
			delay *= retryBackoffFactor
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to erp database: %w", err)
	}

	logger.Info("erp database connected", zap.String("host", cfg.Host))
	return &Client{db: db, logger: logger, cfg: cfg}, nil
}

// IsEnabled reports whether a live connection exists
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}

// Close releases the connection pool; safe on a nil client
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// HealthCheck pings the ERP database with a short timeout
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsEnabled() {
		return fmt.Errorf("erp client not connected")
	}
	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return c.db.PingContext(pingCtx)
}

// FetchOpenSalesOrders reads the open sales orders with their lines.
// Lines with zero quantity are dropped at the source.
func (c *Client) FetchOpenSalesOrders(ctx context.Context) ([]SalesOrderRecord, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("erp client not connected")
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeoutDuration())
	defer cancel()

	const query = `
		SELECT h.so_number, h.customer_name, h.company_code, h.order_date,
		       l.item_code, l.product_code, l.product_name, l.quantity, l.unit_price
		FROM dbo.sales_order_header h
		JOIN dbo.sales_order_line l ON l.so_number = h.so_number
		WHERE h.status = 'OPEN' AND l.quantity > 0
		ORDER BY h.so_number, l.item_code`

	rows, err := c.db.QueryContext(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying sales orders: %w", err)
	}
	defer rows.Close()

	byCode := make(map[string]*SalesOrderRecord)
	var ordered []string
	for rows.Next() {
		var (
			soCode, customer, company          string
			orderDate                          time.Time
			itemCode, productCode, productName string
			quantity                           int
			unitPrice                          float64
		)
		if err := rows.Scan(&soCode, &customer, &company, &orderDate,
			&itemCode, &productCode, &productName, &quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("scanning sales order row: %w", err)
		}

		record, ok := byCode[soCode]
		if !ok {
			record = &SalesOrderRecord{
				SOCode:       strings.TrimSpace(soCode),
				CustomerName: strings.TrimSpace(customer),
				CompanyCode:  strings.TrimSpace(company),
				OrderDate:    orderDate,
			}
			byCode[soCode] = record
			ordered = append(ordered, soCode)
		}
		record.Lines = append(record.Lines, SalesOrderLineRecord{
			ItemCode:    strings.TrimSpace(itemCode),
			ProductCode: strings.TrimSpace(productCode),
			ProductName: strings.TrimSpace(productName),
			Quantity:    quantity,
			UnitPrice:   decimal.NewFromFloat(unitPrice),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales order rows: %w", err)
	}

	records := make([]SalesOrderRecord, 0, len(ordered))
	for _, code := range ordered {
		records = append(records, *byCode[code])
	}
	return records, nil
}

// buildConnectionString parses "host:port/database" into a sqlserver URL
func buildConnectionString(cfg *config.ERPConfig) (string, error) {
	hostPart, dbName, ok := strings.Cut(cfg.Host, "/")
	if !ok || dbName == "" {
		return "", fmt.Errorf("erp host must be host:port/database, got %q", cfg.Host)
	}

	query := url.Values{}
	query.Add("database", dbName)
	query.Add("encrypt", "true")
	query.Add("trustServerCertificate", "false")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     hostPart,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}
