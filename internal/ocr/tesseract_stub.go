//go:build !cgo || !linux

package ocr

func recognize(string) (string, float64, error) {
	return "", 0, ErrUnavailable
}

func engineInfo() Info {
	return Info{
		Available: false,
		Backend:   "none",
		Error:     ErrUnavailable.Error(),
	}
}
