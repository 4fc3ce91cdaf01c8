package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"conser-control/backend/config"
)

// presignAPI 便于测试替换的预签名接口
type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage 合规附件对象存储
// 附件本身由前端直传，后端只保存 key 并签发临时下载链接
type S3Storage struct {
	presigner presignAPI
	bucket    string
	ttl       time.Duration
}

// NewS3Storage 根据配置创建 S3 客户端
func NewS3Storage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	svc := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	logger.Info("对象存储已启用",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", cfg.Region),
	)

	return newS3Storage(s3.NewPresignClient(svc), cfg.Bucket, cfg.PresignTTL), nil
}

func newS3Storage(presigner presignAPI, bucket string, ttl time.Duration) *S3Storage {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Storage{presigner: presigner, bucket: bucket, ttl: ttl}
}

// PresignDownload 为附件 key 生成临时下载链接，返回链接与有效时长
func (s *S3Storage) PresignDownload(ctx context.Context, key string) (string, time.Duration, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", 0, fmt.Errorf("生成下载链接失败: %w", err)
	}
	return req.URL, s.ttl, nil
}
