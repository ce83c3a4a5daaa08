package ticket

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

func QRCode(data []byte) ([]byte, error) {
	png, err := qrcode.Encode(string(data), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("could not encode QR code: %w", err)
	}

	return png, nil
}

func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
