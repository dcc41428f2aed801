package service

import (
	"context"
	"net/url"
	"time"

	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider abstracts where exam assets (listening audio, question
// PDFs) live. Presign returns a time-limited download URL; local storage has
// nothing to sign and returns the plain path. Assets are written out of band;
// the engine only ever reads them.
type StorageProvider interface {
	GetURL(filename string) string
	Presign(ctx context.Context, filename string, expiry time.Duration) (string, error)
}

type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

func (p *LocalStorageProvider) Presign(ctx context.Context, filename string, expiry time.Duration) (string, error) {
	return p.GetURL(filename), nil
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

func (p *MinioStorageProvider) Presign(ctx context.Context, filename string, expiry time.Duration) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, filename, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == util.StorageMinio {
		if p, err := NewMinioStorageProvider(&cfg.Storage); err == nil {
			provider = p
		}
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}
	return &StorageService{Provider: provider}
}

// PresignAsset signs a stored exam asset reference for download. References
// that are already absolute URLs pass through untouched.
func (s *StorageService) PresignAsset(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	if ref == "" {
		return "", nil
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return ref, nil
	}
	return s.Provider.Presign(ctx, ref, expiry)
}
