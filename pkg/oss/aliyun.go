// Package oss 对象存储服务，用于菜品图片
package oss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Uploader 上传器接口
type Uploader interface {
	Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GetURL(objectKey string) string
}

// AliyunConfig 阿里云 OSS 配置
type AliyunConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	Domain          string // 自定义域名（可选）
	BasePath        string // 基础路径，如 "menu-images/"
}

// AliyunUploader 阿里云 OSS 上传器
type AliyunUploader struct {
	bucket *oss.Bucket
	config *AliyunConfig
}

// NewAliyunUploader 创建阿里云 OSS 上传器
func NewAliyunUploader(config *AliyunConfig) (*AliyunUploader, error) {
	client, err := oss.New(config.Endpoint, config.AccessKeyID, config.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("创建 OSS 客户端失败: %w", err)
	}

	bucket, err := client.Bucket(config.BucketName)
	if err != nil {
		return nil, fmt.Errorf("获取 Bucket 失败: %w", err)
	}

	return &AliyunUploader{
		bucket: bucket,
		config: config,
	}, nil
}

// Upload 上传文件
func (u *AliyunUploader) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := u.bucket.PutObject(u.fullKey(objectKey), reader, opts...); err != nil {
		return "", fmt.Errorf("上传文件失败: %w", err)
	}
	return u.GetURL(objectKey), nil
}

// Delete 删除文件
func (u *AliyunUploader) Delete(ctx context.Context, objectKey string) error {
	return u.bucket.DeleteObject(u.fullKey(objectKey), oss.WithContext(ctx))
}

// GetURL 获取文件 URL
func (u *AliyunUploader) GetURL(objectKey string) string {
	return publicURL(u.config, u.fullKey(objectKey))
}

func (u *AliyunUploader) fullKey(objectKey string) string {
	if u.config.BasePath == "" {
		return objectKey
	}
	return path.Join(u.config.BasePath, objectKey)
}

func publicURL(cfg *AliyunConfig, fullKey string) string {
	if cfg.Domain != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Domain, "/"), fullKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", cfg.BucketName, cfg.Endpoint, fullKey)
}

// GenerateObjectKey 生成对象键 {prefix}/{yyyy/mm/dd}/{uuid}{ext}
func GenerateObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s",
		strings.Trim(prefix, "/"),
		time.Now().Format("2006/01/02"),
		uuid.NewString(),
		ext,
	)
}

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// GetContentType 根据文件扩展名获取 Content-Type
func GetContentType(filename string) string {
	if ct, ok := imageContentTypes[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateImage 校验图片扩展名、大小与文件头，返回可继续读取完整内容的 Reader
func ValidateImage(filename string, size, maxSize int64, reader io.Reader) (io.Reader, error) {
	if _, ok := imageContentTypes[strings.ToLower(path.Ext(filename))]; !ok {
		return nil, fmt.Errorf("不支持的图片格式: %s", path.Ext(filename))
	}
	if maxSize > 0 && size > maxSize {
		return nil, fmt.Errorf("图片大小不能超过 %d 字节", maxSize)
	}

	header := make([]byte, 512)
	n, err := io.ReadFull(reader, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(header[:n]), "image/") {
		return nil, fmt.Errorf("文件不是有效的图片")
	}
	return io.MultiReader(bytes.NewReader(header[:n]), reader), nil
}

// MemoryUploader 内存上传器，未启用 OSS 时使用
type MemoryUploader struct {
	mu      sync.RWMutex
	baseURL string
	files   map[string][]byte
}

// NewMemoryUploader 创建内存上传器
func NewMemoryUploader(baseURL string) *MemoryUploader {
	if baseURL == "" {
		baseURL = "http://localhost/uploads"
	}
	return &MemoryUploader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		files:   make(map[string][]byte),
	}
}

// Upload 写入内存
func (u *MemoryUploader) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	u.files[objectKey] = data
	u.mu.Unlock()
	return u.GetURL(objectKey), nil
}

// Delete 从内存删除
func (u *MemoryUploader) Delete(ctx context.Context, objectKey string) error {
	u.mu.Lock()
	delete(u.files, objectKey)
	u.mu.Unlock()
	return nil
}

// GetURL 获取文件 URL
func (u *MemoryUploader) GetURL(objectKey string) string {
	return u.baseURL + "/" + objectKey
}

// Get 读取已上传的内容
func (u *MemoryUploader) Get(objectKey string) ([]byte, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	data, ok := u.files[objectKey]
	return data, ok
}
