package layout

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Place 按优先级计算图片尺寸，保持宽高比：
// 宽于栏宽时缩到栏宽；否则宽于全局上限时缩到上限；否则保持固有尺寸。
// 入参与返回值单位一致（调用方负责像素到 mm 的换算）。
func Place(intrinsicWidth, intrinsicHeight, maxColumnWidth, globalMaxWidth float64) Placement {
	width := intrinsicWidth
	switch {
	case intrinsicWidth > maxColumnWidth:
		width = maxColumnWidth
	case globalMaxWidth > 0 && intrinsicWidth > globalMaxWidth:
		width = globalMaxWidth
	}
	if intrinsicWidth <= 0 {
		return Placement{}
	}
	return Placement{Width: width, Height: intrinsicHeight * (width / intrinsicWidth)}
}

// PlaceImage 对图片内容项应用 Place，固有尺寸按像素计。
func PlaceImage(img ImageItem, maxColumnWidth, globalMaxWidth float64) Placement {
	return Place(float64(img.Width), float64(img.Height), maxColumnWidth, globalMaxWidth)
}

// DecodeImage 完整解码图片数据。排版阶段与渲染后端共用该函数，
// 保证排版时接受的图片在绘制时同样可以解码。
func DecodeImage(name string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &ImageDecodeError{Name: name, Err: fmt.Errorf("no image data")}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Name: name, Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ImageDecodeError{Name: name, Err: fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())}
	}
	return img, nil
}

// imageSize 解码整张图片并返回固有像素尺寸；内容项已带尺寸时以其为准。
// 只读头部不够：头部完好而数据损坏的图片会在分页之后才被渲染端拒绝。
func imageSize(img ImageItem) (int, int, error) {
	decoded, err := DecodeImage(img.Name, img.Data)
	if err != nil {
		return 0, 0, err
	}
	if img.Width > 0 && img.Height > 0 {
		return img.Width, img.Height, nil
	}
	b := decoded.Bounds()
	return b.Dx(), b.Dy(), nil
}

// fitHeight 在保持宽高比的前提下把过高的图片缩放到 maxHeight。
func fitHeight(p Placement, maxHeight float64) Placement {
	if p.Height <= maxHeight || p.Height <= 0 {
		return p
	}
	scale := maxHeight / p.Height
	return Placement{Width: p.Width * scale, Height: maxHeight}
}
