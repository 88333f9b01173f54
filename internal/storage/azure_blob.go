package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/config"
)

// AzureBlobStorage stores payment documents in an Azure blob container
type AzureBlobStorage struct {
	client    *azblob.Client
	container string
	logger    *zap.Logger
}

// NewAzureBlobStorage connects to Azure blob storage and makes sure the
// configured container exists.
func NewAzureBlobStorage(cfg *config.StorageConfig, logger *zap.Logger) (*AzureBlobStorage, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("storage connection string is required for cloud mode")
	}
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	s := &AzureBlobStorage{
		client:    client,
		container: cfg.Container,
		logger:    logger,
	}
	if _, err := client.CreateContainer(context.Background(), cfg.Container, nil); err != nil {
		if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
			return nil, fmt.Errorf("creating container: %w", err)
		}
	}
	return s, nil
}

// Upload streams the document into the container under a random sharded name
func (s *AzureBlobStorage) Upload(ctx context.Context, filename, contentType string, data io.Reader) (string, int64, error) {
	fileID := uuid.New().String()
	ext := filepath.Ext(filename)
	blobName := fileID[:2] + "/" + fileID[2:4] + "/" + fileID + ext

	counter := &countingReader{reader: data}
	_, err := s.client.UploadStream(ctx, s.container, blobName, counter, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("uploading blob: %w", err)
	}

	s.logger.Debug("document stored in blob storage",
		zap.String("blob", blobName),
		zap.Int64("size", counter.count),
	)
	return blobName, counter.count, nil
}

// Download streams a stored document from the container
func (s *AzureBlobStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, path, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading blob: %w", err)
	}
	return resp.Body, nil
}

// Delete removes a stored document; deleting a missing blob is not an error
func (s *AzureBlobStorage) Delete(ctx context.Context, path string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, path, nil); err != nil {
		if strings.Contains(err.Error(), "BlobNotFound") {
			return nil
		}
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

type countingReader struct {
	reader io.Reader
	count  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.count += int64(n)
	return n, err
}
