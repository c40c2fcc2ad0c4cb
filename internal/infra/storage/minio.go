package storage

import (
	"bytes"
	"context"

	"gestock/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinioClient はMinIOへ接続してクライアントを返す。
func NewMinioClient(cfg config.Config) (*minio.Client, error) {
	return minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
}

// EnsureBucket はバケットがなければ作る。
func EnsureBucket(ctx context.Context, client *minio.Client, bucketName string) error {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

// PhotoMinioRepository は商品写真をMinIOに保存する。
type PhotoMinioRepository struct {
	mc     *minio.Client
	bucket string
}

func NewPhotoMinioRepository(mc *minio.Client, bucket string) *PhotoMinioRepository {
	return &PhotoMinioRepository{mc: mc, bucket: bucket}
}

func (r *PhotoMinioRepository) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	reader := bytes.NewReader(data)

	info, err := r.mc.PutObject(ctx, r.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return info.Key, nil
}

func (r *PhotoMinioRepository) Delete(ctx context.Context, key string) error {
	return r.mc.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{})
}
