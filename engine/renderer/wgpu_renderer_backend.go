package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/h2scape/common"
	"github.com/Carmen-Shannon/h2scape/engine/camera"
	"github.com/Carmen-Shannon/h2scape/engine/light"
	"github.com/Carmen-Shannon/h2scape/engine/model"
	"github.com/Carmen-Shannon/h2scape/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed facility.wgsl
var facilityShader string

const (
	// instanceStride is the per-draw slot size in the instance buffer. Dynamic uniform offsets
	// must be multiples of minUniformBufferOffsetAlignment, which WebGPU caps at 256.
	instanceStride = 256

	// meshIdleFrames is how many frames a mesh may go undrawn before its buffers are released.
	meshIdleFrames = 120
)

var (
	cameraUniformSize   = uint64((&camera.GPUCameraUniform{}).Size())
	instanceUniformSize = uint64((&model.GPUInstance{}).Size())
	lightBlockSize      = uint64(16 + light.MaxGPULights*32)
)

// meshBuffers are the GPU copies of one mesh.
type meshBuffers struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
	lastFrame  uint64
}

func (m *meshBuffers) release() {
	m.vertex.Release()
	m.index.Release()
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	opaquePipeline  *wgpu.RenderPipeline
	blendedPipeline *wgpu.RenderPipeline

	frameLayout    *wgpu.BindGroupLayout
	instanceLayout *wgpu.BindGroupLayout

	cameraBuffer *wgpu.Buffer
	lightBuffer  *wgpu.Buffer
	frameGroup   *wgpu.BindGroup

	instanceBuffer   *wgpu.Buffer
	instanceCapacity int
	instanceGroup    *wgpu.BindGroup
	staging          []byte

	meshes map[*model.Mesh]*meshBuffers
	frame  uint64
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, mode PresentMode) *wgpuRendererBackendImpl {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: presentModeOf(mode),
		sampleCount: sampleCount,
		meshes:      make(map[*model.Mesh]*meshBuffers),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	if err := b.initFrameResources(); err != nil {
		panic(err)
	}
	if err := b.initPipelines(); err != nil {
		panic(err)
	}
	return b
}

func presentModeOf(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

// initFrameResources creates the per-frame uniforms and both bind group layouts.
func (b *wgpuRendererBackendImpl) initFrameResources() error {
	var err error
	b.frameLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: cameraUniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: lightBlockSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create frame bind group layout: %w", err)
	}

	b.instanceLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Instance Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   instanceUniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create instance bind group layout: %w", err)
	}

	b.cameraBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Buffer",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.lightBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Light Buffer",
		Size:  lightBlockSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	b.frameGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: b.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.lightBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	return b.growInstances(64)
}

// growInstances makes room for at least n per-draw slots, recreating the instance bind group.
func (b *wgpuRendererBackendImpl) growInstances(n int) error {
	if n <= b.instanceCapacity {
		return nil
	}
	capacity := max(n, b.instanceCapacity*2)

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Instance Buffer",
		Size:  uint64(capacity * instanceStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Instance Bind Group",
		Layout: b.instanceLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Size: instanceUniformSize},
		},
	})
	if err != nil {
		buf.Release()
		return err
	}

	if b.instanceGroup != nil {
		b.instanceGroup.Release()
		b.instanceBuffer.Release()
	}
	b.instanceBuffer = buf
	b.instanceGroup = group
	b.instanceCapacity = capacity
	b.staging = make([]byte, capacity*instanceStride)
	return nil
}

// initPipelines compiles the facility shader into an opaque pipeline and an alpha-blended one
// that tests depth without writing it.
func (b *wgpuRendererBackendImpl) initPipelines() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "facility.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: facilityShader,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile facility shader: %w", err)
	}
	defer module.Release()

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Facility Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.frameLayout, b.instanceLayout},
	})
	if err != nil {
		return err
	}

	b.opaquePipeline, err = b.createPipeline("Opaque", module, layout, nil, true)
	if err != nil {
		return err
	}
	b.blendedPipeline, err = b.createPipeline("Blended", module, layout, &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}, false)
	return err
}

func (b *wgpuRendererBackendImpl) createPipeline(label string, module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, blend *wgpu.BlendState, depthWrite bool) (*wgpu.RenderPipeline, error) {
	vertexStride := uint64((&model.GPUVertex{}).Size())
	cull := wgpu.CullModeBack
	if blend != nil {
		cull = wgpu.CullModeNone
	}

	return b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					Blend:     blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cull,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: depthWrite,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
}

func (b *wgpuRendererBackendImpl) Configure(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	var err error
	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = b.msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = b.depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView, // nil when MSAA is off; set in Draw
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// releaseTargets frees the size-dependent textures. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
		b.msaaTextureView, b.msaaTexture = nil, nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
		b.depthTextureView, b.depthTexture = nil, nil
	}
}

func (b *wgpuRendererBackendImpl) Draw(frame *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface not configured")
	}
	b.frame++

	if err := b.growInstances(len(frame.Items)); err != nil {
		return fmt.Errorf("grow instance buffer: %w", err)
	}
	draws := make([]*meshBuffers, len(frame.Items))
	for i, it := range frame.Items {
		mb, err := b.meshBuffers(it.Mesh)
		if err != nil {
			return fmt.Errorf("upload mesh %q: %w", it.Mesh.Name, err)
		}
		draws[i] = mb
		inst := instanceOf(it)
		copy(b.staging[i*instanceStride:], inst.Marshal())
	}

	b.queue.WriteBuffer(b.cameraBuffer, 0, frame.Camera.Marshal())
	b.queue.WriteBuffer(b.lightBuffer, 0, light.MarshalLightBlock(frame.Lights))
	if len(frame.Items) > 0 {
		b.queue.WriteBuffer(b.instanceBuffer, 0, b.staging[:len(frame.Items)*instanceStride])
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	r, g, bl := frame.Background.RGB()
	b.renderPassDescriptor.ColorAttachments[0].ClearValue = wgpu.Color{R: float64(r), G: float64(g), B: float64(bl), A: 1}

	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetBindGroup(0, b.frameGroup, nil)
	var bound *wgpu.RenderPipeline
	for i, it := range frame.Items {
		p := b.opaquePipeline
		if it.Material.Opacity < 1 {
			p = b.blendedPipeline
		}
		if p != bound {
			pass.SetPipeline(p)
			bound = p
		}
		mb := draws[i]
		pass.SetBindGroup(1, b.instanceGroup, []uint32{uint32(i * instanceStride)})
		pass.SetVertexBuffer(0, mb.vertex, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(mb.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(mb.indexCount, 1, 0, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	b.surface.Present()

	b.evictMeshes()
	return nil
}

// meshBuffers returns the GPU buffers for m, uploading them on first use. Caller must hold the
// mutex.
func (b *wgpuRendererBackendImpl) meshBuffers(m *model.Mesh) (*meshBuffers, error) {
	if mb, ok := b.meshes[m]; ok {
		mb.lastFrame = b.frame
		return mb, nil
	}

	vertexData := make([]byte, 0, len(m.Vertices)*24)
	for i := range m.Vertices {
		vertexData = append(vertexData, m.Vertices[i].Marshal()...)
	}
	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vb, 0, vertexData)

	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name + " Index Buffer",
		Size:  uint64(len(m.Indices) * 4),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, err
	}
	b.queue.WriteBuffer(ib, 0, common.SliceToBytes(m.Indices))

	mb := &meshBuffers{vertex: vb, index: ib, indexCount: uint32(len(m.Indices)), lastFrame: b.frame}
	b.meshes[m] = mb
	return mb, nil
}

// evictMeshes releases buffers of meshes that left the scene, e.g. after a rebuild. Caller
// must hold the mutex.
func (b *wgpuRendererBackendImpl) evictMeshes() {
	for m, mb := range b.meshes {
		if b.frame-mb.lastFrame > meshIdleFrames {
			mb.release()
			delete(b.meshes, m)
		}
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for m, mb := range b.meshes {
		mb.release()
		delete(b.meshes, m)
	}
	b.releaseTargets()
	if b.instanceGroup != nil {
		b.instanceGroup.Release()
		b.instanceBuffer.Release()
	}
	b.frameGroup.Release()
	b.cameraBuffer.Release()
	b.lightBuffer.Release()
	b.opaquePipeline.Release()
	b.blendedPipeline.Release()
	b.frameLayout.Release()
	b.instanceLayout.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
	runtime.UnlockOSThread()
}

// instanceOf packs a draw item into the per-draw uniform.
func instanceOf(it scene.Item) model.GPUInstance {
	mat := it.Material
	return model.GPUInstance{
		Model:    it.World,
		Color:    mat.Color.RGBA(mat.Opacity),
		Emissive: mat.Emissive.RGBA(mat.EmissiveIntensity),
		Surface:  [4]float32{mat.Metalness, mat.Roughness, 0, 0},
	}
}
