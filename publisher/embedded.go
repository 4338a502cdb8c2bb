package publisher

import "encoding/base64"

// FirstEmbeddedImage 取正文里第一张内嵌图片的字节（约定首图是封面）。
func FirstEmbeddedImage(doc string) ([]byte, bool) {
	m := embeddedImgRe.FindStringSubmatch(doc)
	if m == nil {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}
