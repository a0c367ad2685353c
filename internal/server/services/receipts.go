package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/config"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/repositories/repomanager"
)

const presignValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ReceiptService records packages accepted at the harbour and hands out
// presigned URLs for their scanned receipt documents. Documents never pass
// through the server.
type ReceiptService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	now         func() time.Time
}

func NewReceiptService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *ReceiptService {
	return &ReceiptService{db: db, repomanager: m, config: cfg, now: time.Now}
}

func (s *ReceiptService) receiptKey(id int64) string {
	d := s.now().UTC()
	return fmt.Sprintf("receipts/%d/%02d/%d/%v", d.Year(), d.Month(), id, uuid.New())
}

func (s *ReceiptService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

func (s *ReceiptService) CreateReceipt(ctx context.Context, actor auth.Identity, packageID string, totalWeight float64, note string) (*models.PackageReceipt, error) {
	if err := requireRole(actor, models.RoleHarbourGuard); err != nil {
		return nil, err
	}
	packageID = strings.TrimSpace(packageID)
	if packageID == "" || totalWeight <= 0 {
		return nil, fmt.Errorf("%w: package id and a positive weight are required", common.ErrorValidation)
	}

	return s.repomanager.Receipts(s.db).Create(ctx, &models.PackageReceipt{
		UserID:      actor.UserID,
		PackageID:   packageID,
		TotalWeight: totalWeight,
		Note:        note,
	})
}

// RequestReceiptUpload returns a presigned PUT URL for the receipt document
// and remembers the object key. A repeated request replaces the key.
func (s *ReceiptService) RequestReceiptUpload(ctx context.Context, actor auth.Identity, id int64) (string, string, error) {
	if err := requireRole(actor, models.RoleHarbourGuard); err != nil {
		return "", "", err
	}
	repo := s.repomanager.Receipts(s.db)
	r, err := repo.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if err := requireOwner(actor, r.UserID); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := s.receiptKey(id)
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	if err := repo.SetDocumentKey(ctx, id, key); err != nil {
		return "", "", err
	}
	return key, req.URL, nil
}

func (s *ReceiptService) GetReceiptDocumentURL(ctx context.Context, actor auth.Identity, id int64) (string, error) {
	if err := requireRole(actor, models.RoleHarbourGuard); err != nil {
		return "", err
	}
	r, err := s.repomanager.Receipts(s.db).Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := requireOwner(actor, r.UserID); err != nil {
		return "", err
	}
	if r.DocumentKey == "" {
		return "", fmt.Errorf("%w: receipt %d has no document", common.ErrorNotFound, id)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &r.DocumentKey,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
