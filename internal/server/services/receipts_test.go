package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/config"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceiptFixture(t *testing.T) (*ReceiptService, *fakeRepoManager) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	cfg := &config.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "receipts",
	}
	rm := newFakeRepoManager()
	svc := NewReceiptService(db, rm, cfg)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }
	return svc, rm
}

// stubPresign replaces the AWS seams for the duration of the test.
func stubPresign(t *testing.T) (puts, gets *[]string) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNewS3, origNewPre
		presignPutObject, presignGetObject = origPut, origGet
	})

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(aws.Config, ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(*s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	puts, gets = &[]string{}, &[]string{}
	presignPutObject = func(_ *s3.PresignClient, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		*puts = append(*puts, *in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3/put/" + *in.Key}, nil
	}
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		*gets = append(*gets, *in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3/get/" + *in.Key}, nil
	}
	return puts, gets
}

func Test_getPresignClient_AppliesConfig(t *testing.T) {
	svc, _ := newReceiptFixture(t)
	stubPresign(t)

	loadDefaultAWSConfig = func(_ context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	pc, err := svc.getPresignClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pc)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = svc.getPresignClient(context.Background())
	assert.EqualError(t, err, "load-fail")
}

func TestCreateReceipt(t *testing.T) {
	svc, _ := newReceiptFixture(t)

	r, err := svc.CreateReceipt(context.Background(), guard, " PKG-1 ", 12.5, "wet")
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)
	assert.Equal(t, guard.UserID, r.UserID)
	assert.Equal(t, "PKG-1", r.PackageID)

	_, err = svc.CreateReceipt(context.Background(), centraUser, "PKG-2", 1, "")
	assert.ErrorIs(t, err, common.ErrorForbidden)
	_, err = svc.CreateReceipt(context.Background(), guard, "PKG-2", 0, "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestReceiptDocumentFlow(t *testing.T) {
	svc, rm := newReceiptFixture(t)
	puts, gets := stubPresign(t)
	rm.receipts.m[1] = &models.PackageReceipt{ID: 1, UserID: guard.UserID, PackageID: "PKG-1", TotalWeight: 3}

	_, err := svc.GetReceiptDocumentURL(context.Background(), guard, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound, "no document yet")

	key, putURL, err := svc.RequestReceiptUpload(context.Background(), guard, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "receipts/2024/05/1/"), key)
	assert.Equal(t, "https://s3/put/"+key, putURL)
	assert.Equal(t, []string{"receipts/" + key}, *puts)
	assert.Equal(t, key, rm.receipts.m[1].DocumentKey)

	getURL, err := svc.GetReceiptDocumentURL(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://s3/get/"+key, getURL)
	assert.Equal(t, []string{"receipts/" + key}, *gets)
}

func TestReceiptDocument_Errors(t *testing.T) {
	svc, rm := newReceiptFixture(t)
	stubPresign(t)
	rm.receipts.m[1] = &models.PackageReceipt{ID: 1, UserID: guard.UserID}

	_, _, err := svc.RequestReceiptUpload(context.Background(), guard, 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, _, err = svc.RequestReceiptUpload(context.Background(), xyzUser, 1)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("put-fail")
	}
	_, _, err = svc.RequestReceiptUpload(context.Background(), guard, 1)
	assert.EqualError(t, err, "put-fail")
	assert.Empty(t, rm.receipts.m[1].DocumentKey, "key only stored once the URL exists")

	rm.receipts.m[1].DocumentKey = "receipts/x"
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("get-fail")
	}
	_, err = svc.GetReceiptDocumentURL(context.Background(), guard, 1)
	assert.EqualError(t, err, "get-fail")
}

func TestReceiptDocument_OwnerOnly(t *testing.T) {
	svc, rm := newReceiptFixture(t)
	puts, gets := stubPresign(t)
	rm.receipts.m[1] = &models.PackageReceipt{ID: 1, UserID: guard.UserID, DocumentKey: "receipts/2024/05/1/a"}
	otherGuard := auth.Identity{UserID: 8, Role: models.RoleHarbourGuard, Name: "Rudi"}

	_, _, err := svc.RequestReceiptUpload(context.Background(), otherGuard, 1)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	_, err = svc.GetReceiptDocumentURL(context.Background(), otherGuard, 1)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	assert.Empty(t, *puts)
	assert.Empty(t, *gets)
	assert.Equal(t, "receipts/2024/05/1/a", rm.receipts.m[1].DocumentKey, "key untouched")

	_, _, err = svc.RequestReceiptUpload(context.Background(), admin, 1)
	require.NoError(t, err, "admins may act on any receipt")
}
