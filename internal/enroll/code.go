package enroll

import (
	"crypto/rand"
	"strings"
)

const codeLength = 8

// 32 символа, без двусмысленных I/O/0/1 — код диктуют по телефону.
// 256%32 == 0, поэтому выборка по остатку равномерна.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode возвращает 8-символьный код из криптографического источника.
// Уникальность не гарантируется — её обеспечивает store при вставке.
func GenerateCode() (string, error) {
	var raw [codeLength]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range raw {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

// NormalizeCode приводит пользовательский ввод к канонической форме.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
