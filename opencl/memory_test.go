package opencl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireImageSupport(t *testing.T, ctx *Context) {
	if !capture(ctx.Devices()[0].ImageSupport()).Test(t) {
		t.Skipf("Device %s has no image support", ctx.Devices()[0])
	}
}

func TestImage(t *testing.T) {
	ctx := getTestContext(t)
	requireImageSupport(t, ctx)
	queue := capture(ctx.CreateCommandQueue(0)).Test(t)

	format := ImageFormat{Order: ChannelOrderRGBA, Type: ChannelTypeUnsignedInt8}
	formats := capture(ctx.SupportedImageFormats(MemReadWrite, MemObjectImage2D)).Test(t)
	require.Contains(t, formats, format)

	const width, height = 4, 3
	desc := ImageDesc{Type: MemObjectImage2D, Width: width, Height: height}
	pixels := make([]byte, width*height*4)
	for ii := range pixels {
		pixels[ii] = byte(ii)
	}
	image := capture(CreateImage(ctx, MemReadWrite|MemCopyHostPtr, format, desc, pixels)).Test(t)
	defer func() { require.NoError(t, image.Release()) }()
	assert.Equal(t, format, capture(image.Format()).Test(t))
	assert.Equal(t, 4, capture(image.ElementSize()).Test(t))
	assert.Equal(t, width, capture(image.Width()).Test(t))
	assert.Equal(t, height, capture(image.Height()).Test(t))
	assert.Equal(t, MemObjectImage2D, capture(image.MemType()).Test(t))

	region := [3]int{width, height, 1}
	got := make([]byte, len(pixels))
	require.NoError(t, capture(queue.EnqueueReadImage(image, Blocking, [3]int{}, region, 0, 0, got)).Test(t).Release())
	assert.Equal(t, pixels, got)

	// Fill the second row with a color.
	color := [4]uint32{1, 2, 3, 4}
	require.NoError(t, capture(EnqueueFillImage(queue, image, color, [3]int{0, 1, 0}, [3]int{width, 1, 1})).
		Test(t).WaitAndRelease())
	require.NoError(t, capture(queue.EnqueueReadImage(image, Blocking, [3]int{}, region, 0, 0, got)).Test(t).Release())
	for x := range width {
		offset := (width + x) * 4
		assert.Equalf(t, []byte{1, 2, 3, 4}, got[offset:offset+4], "pixel (%d, 1)", x)
	}
	assert.Equal(t, pixels[:width*4], got[:width*4], "first row unchanged")

	// Copy the image to a buffer.
	buffer := capture(CreateBuffer[byte](ctx, MemReadWrite, len(pixels), nil)).Test(t)
	defer func() { require.NoError(t, buffer.Release()) }()
	require.NoError(t, capture(queue.EnqueueCopyImageToBuffer(image, buffer, [3]int{}, region, 0)).Test(t).
		WaitAndRelease())
	fromBuffer := make([]byte, len(pixels))
	require.NoError(t, capture(EnqueueReadBuffer(queue, buffer, Blocking, 0, fromBuffer)).Test(t).Release())
	assert.Equal(t, got, fromBuffer)

	// Map the first pixel.
	mapped, mapEvent, err := queue.EnqueueMapImage(image, Blocking, MapRead, [3]int{}, [3]int{1, 1, 1})
	require.NoError(t, err)
	require.NoError(t, mapEvent.Release())
	require.NotNil(t, mapped.Ptr)
	assert.GreaterOrEqual(t, mapped.RowPitch, width*4)
	require.NoError(t, capture(queue.EnqueueUnmapMemObject(image, mapped.Ptr)).Test(t).WaitAndRelease())
}

func TestImageErrors(t *testing.T) {
	ctx := getTestContext(t)
	requireImageSupport(t, ctx)
	format := ImageFormat{Order: ChannelOrderRGBA, Type: ChannelTypeUnsignedInt8}
	_, err := CreateImage(ctx, MemReadWrite|MemUseHostPtr, format, ImageDesc{Type: MemObjectImage2D, Width: 2,
		Height: 2}, nil)
	require.Error(t, err)
	_, err = CreateImage(ctx, MemReadWrite, format, ImageDesc{Type: MemObjectImage2D}, nil)
	require.Error(t, err, "zero sized image")
}

func TestSampler(t *testing.T) {
	ctx := getTestContext(t)
	requireImageSupport(t, ctx)
	sampler := capture(CreateSampler(ctx, true, AddressRepeat, FilterLinear)).Test(t)
	assert.True(t, capture(sampler.NormalizedCoords()).Test(t))
	assert.Equal(t, AddressRepeat, capture(sampler.AddressingMode()).Test(t))
	assert.Equal(t, FilterLinear, capture(sampler.FilterMode()).Test(t))
	assert.Equal(t, ctx.Handle(), capture(sampler.Context()).Test(t))
	require.NoError(t, sampler.Release())
	require.NoError(t, sampler.Release())
	assert.True(t, sampler.IsReleased())

	_, err := CreateSamplerWithProperties(ctx, SamplerNormalizedCoords)
	require.Error(t, err, "properties must be key/value pairs")
}

func TestPipe(t *testing.T) {
	ctx := getTestContext(t)
	device := ctx.Devices()[0]
	requireVersion(t, device, "2.0")
	supported, err := device.PipeSupport()
	if err != nil || !supported {
		t.Skipf("Device %s has no pipe support", device)
	}
	pipe := capture(ctx.CreatePipe(MemReadWrite, 16, 32)).Test(t)
	assert.Equal(t, uint32(16), capture(pipe.PacketSize()).Test(t))
	assert.Equal(t, uint32(32), capture(pipe.MaxPackets()).Test(t))
	assert.Equal(t, MemObjectPipe, capture(pipe.MemType()).Test(t))
}
