package vulkan

import (
	"github.com/vkngwrapper/core/core1_0"
)

// CommandBuffer records graphics commands into a primary command buffer
// allocated from the device's pool.
type CommandBuffer struct {
	buffer core1_0.CommandBuffer
}

func (c *CommandBuffer) Handle() core1_0.CommandBuffer {
	return c.buffer
}

func (c *CommandBuffer) Begin() error {
	_, err := c.buffer.Begin(core1_0.CommandBufferBeginInfo{})
	return err
}

func (c *CommandBuffer) End() error {
	_, err := c.buffer.End()
	return err
}

func (c *CommandBuffer) BeginRenderPass(info core1_0.RenderPassBeginInfo) error {
	return c.buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline, info)
}

func (c *CommandBuffer) EndRenderPass() {
	c.buffer.CmdEndRenderPass()
}

func (c *CommandBuffer) SetViewport(viewport core1_0.Viewport) {
	c.buffer.CmdSetViewport([]core1_0.Viewport{viewport})
}

func (c *CommandBuffer) SetScissor(scissor core1_0.Rect2D) {
	c.buffer.CmdSetScissor([]core1_0.Rect2D{scissor})
}

func (c *CommandBuffer) BindPipeline(pipeline core1_0.Pipeline) {
	c.buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, pipeline)
}

func (c *CommandBuffer) BindVertexBuffers(buffers []core1_0.Buffer, offsets []int) {
	c.buffer.CmdBindVertexBuffers(buffers, offsets)
}

func (c *CommandBuffer) PushConstants(layout core1_0.PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte) {
	c.buffer.CmdPushConstants(layout, stages, offset, data)
}

func (c *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	c.buffer.CmdDraw(vertexCount, instanceCount, uint32(firstVertex), uint32(firstInstance))
}
