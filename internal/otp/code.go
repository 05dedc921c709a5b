package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

var codeSpace = big.NewInt(1_000_000)

// CodeGenerator 生成验证码
type CodeGenerator func() (string, error)

// RandomCode 在全部 10^6 个六位数字串上均匀取值，保留前导零
func RandomCode() (string, error) {
	return randomCodeFrom(rand.Reader)
}

func randomCodeFrom(reader io.Reader) (string, error) {
	n, err := rand.Int(reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
