package store

import (
	"context"
	"demo/config"
	"fmt"
	"net/url"
	"time"

	"github.com/google/wire"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ProviderSet = wire.NewSet(NewMinioStore)

type Minio struct {
	Client *minio.Client
	Bucket string
	Expiry time.Duration
}

// NewMinioStore 只有 assets.source 为 minio 时才创建客户端，否则返回 nil
func NewMinioStore(c *config.Config) (*Minio, error) {
	if c.Assets.Source != "minio" {
		return nil, nil
	}
	mc := c.Assets.Minio
	// 指定 Region，预签名时不用再请求 bucket location
	client, err := minio.New(mc.EndPoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKey, mc.SecretKey, ""),
		Secure: mc.Secure,
		Region: mc.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, mc.BucketName)
	if err != nil {
		return nil, fmt.Errorf("bucket check: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", mc.BucketName)
	}

	expiry := mc.UrlExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Minio{Client: client, Bucket: mc.BucketName, Expiry: expiry}, nil
}

// PresignedURL 片段的临时下载地址
func (m *Minio) PresignedURL(ctx context.Context, key string) (*url.URL, error) {
	return m.Client.PresignedGetObject(ctx, m.Bucket, key, m.Expiry, url.Values{})
}

// Exists 对象是否存在
func (m *Minio) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Client.StatObject(ctx, m.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}
