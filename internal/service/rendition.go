// rendition.go — генерация превью из оригинального снимка.
//
// Генератор — чистая функция над байтами: декодирует оригинал,
// масштабирует с сохранением пропорций и кодирует результат в JPEG.
// Изображения, уже вписывающиеся в целевой bounding box,
// не увеличиваются — перекодируются в исходном размере.
package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // регистрация GIF-декодера
	"image/jpeg"
	_ "image/png" // регистрация PNG-декодера
	"io"
	"log/slog"

	"golang.org/x/image/draw"
)

// RenditionService — генератор превью.
type RenditionService struct {
	maxWidth  int
	maxHeight int
	quality   int
	logger    *slog.Logger
}

// NewRenditionService создаёт генератор превью.
// maxWidth, maxHeight — bounding box превью в пикселях.
// quality — качество JPEG на выходе (1..100).
func NewRenditionService(maxWidth, maxHeight, quality int, logger *slog.Logger) *RenditionService {
	return &RenditionService{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		quality:   quality,
		logger:    logger.With(slog.String("component", "rendition")),
	}
}

// Generate читает оригинал из r и возвращает JPEG-превью.
//
// Для одного и того же оригинала и конфигурации результат
// детерминирован. Возвращает ErrUnsupportedFormat, если содержимое
// не декодируется как JPEG, PNG или GIF.
func (rs *RenditionService) Generate(r io.Reader) ([]byte, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}

	bounds := src.Bounds()
	dstW, dstH := fitWithin(bounds.Dx(), bounds.Dy(), rs.maxWidth, rs.maxHeight)

	var result image.Image = src
	if dstW != bounds.Dx() || dstH != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		result = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, result, &jpeg.Options{Quality: rs.quality}); err != nil {
		return nil, fmt.Errorf("кодирование превью: %w", err)
	}

	rs.logger.Debug("Превью сгенерировано",
		slog.String("source_format", format),
		slog.Int("src_width", bounds.Dx()),
		slog.Int("src_height", bounds.Dy()),
		slog.Int("dst_width", dstW),
		slog.Int("dst_height", dstH),
		slog.Int("bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// fitWithin вычисляет размер изображения, вписанного в bounding box
// maxW×maxH с сохранением пропорций. Изображение меньше box
// не увеличивается.
func fitWithin(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= maxW && srcH <= maxH {
		return srcW, srcH
	}

	ratioW := float64(maxW) / float64(srcW)
	ratioH := float64(maxH) / float64(srcH)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}

	dstW := int(float64(srcW) * ratio)
	dstH := int(float64(srcH) * ratio)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}
	return dstW, dstH
}
