package service

import (
	"bytes"
	"errors"
	"testing"
)

func newTestRendition() *RenditionService {
	return NewRenditionService(200, 200, 90, testLogger())
}

// TestRenditionService_ScaleDown проверяет масштабирование
// с сохранением пропорций.
func TestRenditionService_ScaleDown(t *testing.T) {
	rs := newTestRendition()

	src := makeJPEG(t, 800, 600)
	out, err := rs.Generate(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("ошибка генерации: %v", err)
	}

	w, h := decodeJPEGSize(t, out)
	if w != 200 || h != 150 {
		t.Errorf("размер превью %dx%d, ожидался 200x150", w, h)
	}
}

// TestRenditionService_PortraitScaleDown проверяет вписывание
// портретного изображения по высоте.
func TestRenditionService_PortraitScaleDown(t *testing.T) {
	rs := newTestRendition()

	src := makeJPEG(t, 400, 800)
	out, err := rs.Generate(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("ошибка генерации: %v", err)
	}

	w, h := decodeJPEGSize(t, out)
	if w != 100 || h != 200 {
		t.Errorf("размер превью %dx%d, ожидался 100x200", w, h)
	}
}

// TestRenditionService_NoUpscale проверяет, что маленькие изображения
// не увеличиваются.
func TestRenditionService_NoUpscale(t *testing.T) {
	rs := newTestRendition()

	src := makeJPEG(t, 120, 80)
	out, err := rs.Generate(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("ошибка генерации: %v", err)
	}

	w, h := decodeJPEGSize(t, out)
	if w != 120 || h != 80 {
		t.Errorf("размер превью %dx%d, ожидался исходный 120x80", w, h)
	}
}

// TestRenditionService_PNGSource проверяет, что PNG-оригинал
// перекодируется в JPEG-превью.
func TestRenditionService_PNGSource(t *testing.T) {
	rs := newTestRendition()

	src := makePNG(t, 600, 600)
	out, err := rs.Generate(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("ошибка генерации: %v", err)
	}

	// Результат всегда JPEG
	w, h := decodeJPEGSize(t, out)
	if w != 200 || h != 200 {
		t.Errorf("размер превью %dx%d, ожидался 200x200", w, h)
	}
}

// TestRenditionService_UnsupportedFormat проверяет ErrUnsupportedFormat
// для содержимого, не являющегося изображением.
func TestRenditionService_UnsupportedFormat(t *testing.T) {
	rs := newTestRendition()

	_, err := rs.Generate(bytes.NewReader([]byte("это не изображение")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("ожидался ErrUnsupportedFormat, получено: %v", err)
	}
}

// TestFitWithin проверяет расчёт размеров bounding box.
func TestFitWithin(t *testing.T) {
	cases := []struct {
		name                   string
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{"альбомная", 800, 600, 200, 200, 200, 150},
		{"портретная", 600, 800, 200, 200, 150, 200},
		{"квадрат", 1000, 1000, 200, 200, 200, 200},
		{"меньше box", 100, 50, 200, 200, 100, 50},
		{"точный размер", 200, 200, 200, 200, 200, 200},
		{"экстремальная панорама", 10000, 10, 200, 200, 200, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := fitWithin(tc.srcW, tc.srcH, tc.maxW, tc.maxH)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("fitWithin(%d, %d, %d, %d) = (%d, %d), ожидалось (%d, %d)",
					tc.srcW, tc.srcH, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
			}
		})
	}
}
