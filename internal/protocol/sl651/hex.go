package sl651

import (
	"encoding/hex"
	"strings"
)

// HexToBytes 十六进制字符串转字节，忽略空白字符，大小写不敏感
func HexToBytes(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	return hex.DecodeString(s)
}

// BytesToHex 字节转大写十六进制字符串
func BytesToHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
