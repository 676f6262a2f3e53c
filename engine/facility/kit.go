package facility

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/model"
)

// Materials is the surface palette shared by both facility profiles.
type Materials struct {
	Blade    common.Material
	Hub      common.Material
	Tower    common.Material
	Metal    common.Material
	Tank     common.Material
	Pipe     common.Material
	Concrete common.Material
	Panel    common.Material
	Frame    common.Material
	Dark     common.Material
	Label    common.Material
}

// DefaultMaterials returns the physical-style palette.
func DefaultMaterials() Materials {
	m := Materials{
		Blade: common.Material{Color: 0xf0f0f0, Opacity: 1, Metalness: 0.3, Roughness: 0.1},
		Hub:   common.Material{Color: 0xe0e0e0, Opacity: 1, Metalness: 0.5, Roughness: 0.2},
		Tower: common.Material{Color: 0xdcdcdc, Opacity: 1, Metalness: 0.4, Roughness: 0.3},
		Metal: common.Material{Color: 0x666666, Opacity: 1, Metalness: 0.8, Roughness: 0.2},
		Tank:  common.Material{Color: 0x4a90e2, Opacity: 1, Metalness: 0.9, Roughness: 0.1},
		Pipe:  common.Material{Color: 0x708090, Opacity: 1, Metalness: 0.7, Roughness: 0.3},
		Panel: common.Material{Color: 0x1a4488, Opacity: 1, Metalness: 0.1, Roughness: 0.05},
		Frame: common.Material{Color: 0x2a2a2a, Opacity: 1, Metalness: 0.95, Roughness: 0.1},
		Dark:  common.Material{Color: 0x1a1a1a, Opacity: 1, Metalness: 0.8, Roughness: 0.2},
	}
	m.Concrete = common.Opaque(0xcccccc)
	m.Concrete.Opacity = 0.7
	m.Label = common.Opaque(0xffffff)
	m.Label.Opacity = 0.9
	return m
}

// Kit hands out meshes to unit factories. Meshes with the same shape are built once per
// generation and shared between nodes, so renderers upload each shape once.
type Kit struct {
	Materials Materials

	mu     sync.Mutex
	meshes map[string]*model.Mesh
}

func newKit(materials Materials) *Kit {
	return &Kit{Materials: materials, meshes: make(map[string]*model.Mesh)}
}

// Box returns a shared box mesh.
func (k *Kit) Box(width, height, depth float32) *model.Mesh {
	return k.mesh(fmt.Sprintf("box_%g_%g_%g", width, height, depth), func() *model.Mesh {
		return model.Box(width, height, depth)
	})
}

// Cylinder returns a shared capped cylinder mesh.
func (k *Kit) Cylinder(radiusTop, radiusBottom, height float32, radialSegments int) *model.Mesh {
	key := fmt.Sprintf("cylinder_%g_%g_%g_%d", radiusTop, radiusBottom, height, radialSegments)
	return k.mesh(key, func() *model.Mesh {
		return model.Cylinder(radiusTop, radiusBottom, height, radialSegments)
	})
}

// Sphere returns a shared sphere mesh.
func (k *Kit) Sphere(radius float32, widthSegments, heightSegments int) *model.Mesh {
	key := fmt.Sprintf("sphere_%g_%d_%d", radius, widthSegments, heightSegments)
	return k.mesh(key, func() *model.Mesh {
		return model.Sphere(radius, widthSegments, heightSegments)
	})
}

// Hemisphere returns a shared upper hemisphere mesh.
func (k *Kit) Hemisphere(radius float32, widthSegments, heightSegments int) *model.Mesh {
	key := fmt.Sprintf("hemisphere_%g_%d_%d", radius, widthSegments, heightSegments)
	return k.mesh(key, func() *model.Mesh {
		return model.Hemisphere(radius, widthSegments, heightSegments)
	})
}

// Len returns the number of distinct meshes handed out.
func (k *Kit) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.meshes)
}

func (k *Kit) mesh(key string, build func() *model.Mesh) *model.Mesh {
	k.mu.Lock()
	defer k.mu.Unlock()
	if m, ok := k.meshes[key]; ok {
		return m
	}
	m := build()
	k.meshes[key] = m
	return m
}
