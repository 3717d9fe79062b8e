package usecase

import (
	"context"
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"demo/pkg/store"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// AssetUsecase 片段表和片段地址。static 由 echo 直接提供文件，minio 返回预签名地址
type AssetUsecase struct {
	l      *log.Logger
	config *config.Config
	minio  *store.Minio
	clips  domain.ClipTable
}

func NewAssetUsecase(l *log.Logger, c *config.Config, minio *store.Minio) (*AssetUsecase, error) {
	clips, err := domain.ClipTableFrom(c.Character.Clips)
	if err != nil {
		return nil, fmt.Errorf("clip table: %w", err)
	}
	if c.Assets.Source == "minio" && minio == nil {
		return nil, errors.New("assets.source is minio but no minio store is configured")
	}
	return &AssetUsecase{
		l:      l.WithModule("AssetUsecase"),
		config: c,
		minio:  minio,
		clips:  clips,
	}, nil
}

func (u *AssetUsecase) Clips() domain.ClipTable {
	return u.clips
}

// URL 浏览器可以直接加载的地址
func (u *AssetUsecase) URL(ctx context.Context, ref string) (string, error) {
	if u.minio != nil {
		signed, err := u.minio.PresignedURL(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("presign %s: %w", ref, err)
		}
		return signed.String(), nil
	}
	segments := lo.Map(strings.Split(ref, "/"), func(s string, _ int) string {
		return url.PathEscape(s)
	})
	return strings.TrimRight(u.config.Assets.Prefix, "/") + "/" + strings.Join(segments, "/"), nil
}

// URLs 所有片段的地址，key 为片段引用
func (u *AssetUsecase) URLs(ctx context.Context) (map[string]string, error) {
	urls := make(map[string]string)
	for _, ref := range u.clips.Refs() {
		s, err := u.URL(ctx, ref)
		if err != nil {
			return nil, err
		}
		urls[ref] = s
	}
	return urls, nil
}

// Missing 找不到的片段；查询出错的也算缺失
func (u *AssetUsecase) Missing(ctx context.Context) []string {
	return lo.Filter(u.clips.Refs(), func(ref string, _ int) bool {
		ok, err := u.exists(ctx, ref)
		if err != nil {
			u.l.Warn("check clip failed", log.String("clip", ref), log.Error(err))
			return true
		}
		return !ok
	})
}

func (u *AssetUsecase) exists(ctx context.Context, ref string) (bool, error) {
	if u.minio != nil {
		return u.minio.Exists(ctx, ref)
	}
	_, err := os.Stat(filepath.Join(u.config.Assets.Dir, filepath.FromSlash(ref)))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Check 启动时记录缺失的片段，缺失不影响启动
func (u *AssetUsecase) Check(ctx context.Context) {
	missing := u.Missing(ctx)
	for _, ref := range missing {
		u.l.Warn("clip asset missing", log.String("clip", ref))
	}
	u.l.Info("clip assets checked", log.Int("total", len(u.clips.Refs())), log.Int("missing", len(missing)))
}

func (u *AssetUsecase) Catalog(ctx context.Context) (*domain.ClipCatalog, error) {
	urls, err := u.URLs(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ClipCatalog{
		Table:   u.clips.Raw(),
		URLs:    urls,
		Missing: u.Missing(ctx),
	}, nil
}
