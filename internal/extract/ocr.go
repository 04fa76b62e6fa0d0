package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Token is one recognized word with its recognizer confidence on a 0-100
// scale. This is a genuine recognition score, unlike lengthConfidence.
type Token struct {
	Word       string
	Confidence float64
}

// OCREngine recognizes word tokens in a preprocessed image.
type OCREngine interface {
	Recognize(img image.Image) ([]Token, error)
}

// tesseractEngine runs gosseract in single-block page segmentation mode
// (--psm 6), which suits scanned documents and screenshots.
type tesseractEngine struct{}

func (tesseractEngine) Recognize(img image.Image) ([]Token, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("set psm: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		tokens = append(tokens, Token{Word: word, Confidence: b.Confidence})
	}
	return tokens, nil
}

// extractImage preprocesses the image and runs OCR, keeping only tokens above
// minTokenConfidence. Overall confidence is the mean of surviving token
// confidences, 0 when none survive.
func (e *TextExtractor) extractImage(path string) (string, string, float64, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: open image: %v", ErrLoadFailed, err)
	}

	tokens, err := e.ocr.Recognize(preprocessImage(img))
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: ocr: %v", ErrLoadFailed, err)
	}

	var (
		words []string
		sum   float64
		kept  int
	)
	for _, tok := range tokens {
		if tok.Confidence > minTokenConfidence {
			words = append(words, tok.Word)
			sum += tok.Confidence
			kept++
		}
	}
	if kept == 0 {
		return "", "ocr_no_text", 0, nil
	}
	return strings.Join(words, " "), "tesseract_ocr", sum / float64(kept), nil
}

// preprocessImage runs the standard OCR cleanup chain: grayscale, denoise,
// contrast boost, Otsu binarization.
func preprocessImage(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	denoised := imaging.Blur(gray, 0.8)
	contrast := imaging.AdjustContrast(denoised, 30)
	return otsuBinarize(contrast)
}

// otsuBinarize thresholds a grayscale image with Otsu's method.
func otsuBinarize(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			hist[v]++
			gray.Pix[gray.PixOffset(x, y)] = v
		}
	}

	total := bounds.Dx() * bounds.Dy()
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}
	var (
		sumB, wB  float64
		maxVar    float64
		threshold uint8
	)
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * hist[i])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = uint8(i)
		}
	}

	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray
}
