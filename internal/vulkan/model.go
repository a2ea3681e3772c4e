package vulkan

import (
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/push-constants/internal/engine"
	"github.com/vkngwrapper/push-constants/internal/geometry"
)

// Model is a vertex buffer in device local memory.
type Model struct {
	device *Device

	vertexBuffer       core1_0.Buffer
	vertexBufferMemory core1_0.DeviceMemory
	vertexCount        int
}

func NewModel(device *Device, vertices []geometry.Vertex) (*Model, error) {
	if len(vertices) < 3 {
		return nil, errors.Newf("vertex count must be at least 3, got %d", len(vertices))
	}

	m := &Model{device: device, vertexCount: len(vertices)}
	err := m.createVertexBuffer(vertices)
	if err != nil {
		m.Destroy()
		return nil, errors.Wrap(err, "failed to create vertex buffer")
	}

	return m, nil
}

func (m *Model) VertexCount() int {
	return m.vertexCount
}

func (m *Model) Bind(buffer engine.CommandBuffer) {
	buffer.BindVertexBuffers([]core1_0.Buffer{m.vertexBuffer}, []int{0})
}

func (m *Model) Draw(buffer engine.CommandBuffer) {
	buffer.Draw(m.vertexCount, 1, 0, 0)
}

func (m *Model) Destroy() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Destroy(nil)
		m.vertexBuffer = nil
	}

	if m.vertexBufferMemory != nil {
		m.vertexBufferMemory.Free(nil)
		m.vertexBufferMemory = nil
	}
}

// The vertices go through a host visible staging buffer into device local
// memory.
func (m *Model) createVertexBuffer(vertices []geometry.Vertex) error {
	var err error
	bufferSize := binary.Size(vertices)

	stagingBuffer, stagingBufferMemory, err := m.device.createBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if stagingBuffer != nil {
		defer stagingBuffer.Destroy(nil)
	}
	if stagingBufferMemory != nil {
		defer stagingBufferMemory.Free(nil)
	}

	if err != nil {
		return err
	}

	err = writeData(stagingBufferMemory, 0, vertices)
	if err != nil {
		return err
	}

	m.vertexBuffer, m.vertexBufferMemory, err = m.device.createBuffer(bufferSize, core1_0.BufferUsageTransferDst|core1_0.BufferUsageVertexBuffer, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	return m.device.copyBuffer(stagingBuffer, m.vertexBuffer, bufferSize)
}

func VertexBindingDescriptions() []core1_0.VertexInputBindingDescription {
	v := geometry.Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.RateVertex,
		},
	}
}

func VertexAttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := geometry.Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
	}
}
