package wgpud

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oliverbestmann/webgpu/wgpu"

	"github.com/pacegfx/framepace/pace"
)

// ViewCache keeps the per-buffer render-target views. Surface textures
// change identity every acquire, so views are cached per texture and
// released on eviction or when the buffer set goes away.
type ViewCache struct {
	cache *lru.Cache[*wgpu.Texture, *wgpu.TextureView]
}

func NewViewCache() *ViewCache {
	cache, _ := lru.NewWithEvict[*wgpu.Texture, *wgpu.TextureView](8, releaseViewOnEviction)
	return &ViewCache{cache: cache}
}

func (v *ViewCache) viewFor(tex *wgpu.Texture) (*wgpu.TextureView, error) {
	view, ok := v.cache.Get(tex)
	if ok {
		return view, nil
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	v.cache.Add(tex, view)

	return view, nil
}

// CreateView implements pace.ViewRegistry. Surface textures are bound
// lazily at acquire time, so there is nothing to create for a buffer
// that is not currently acquired.
func (v *ViewCache) CreateView(index int, buf pace.Buffer) error {
	bb, ok := buf.(*BackBuffer)
	if !ok {
		return fmt.Errorf("foreign buffer %T", buf)
	}
	if bb.texture == nil {
		return nil
	}
	_, err := v.viewFor(bb.texture)
	return err
}

// ReleaseViews implements pace.ViewRegistry.
func (v *ViewCache) ReleaseViews() {
	v.cache.Purge()
}

func releaseViewOnEviction(_ *wgpu.Texture, view *wgpu.TextureView) {
	view.Release()
}
