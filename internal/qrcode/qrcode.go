package qrcode

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// PNG renders a short URL as a QR code image.
func PNG(shortURL string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(shortURL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

func DataURI(shortURL string) (string, error) {
	png, err := PNG(shortURL, DefaultSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ASCII renders the code with block characters for terminals.
func ASCII(shortURL string) (string, error) {
	qr, err := qrcode.New(shortURL, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	var sb strings.Builder
	for _, row := range qr.Bitmap() {
		for _, dark := range row {
			if dark {
				sb.WriteString("██")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
