// Package executor исполняет свопы: симулятор для режима SIMU и
// Jupiter-агрегатор для режима REAL.
package executor

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"

	"memebot/pkg/crypto"
)

// Wallet - кошелёк Solana для подписи транзакций
type Wallet struct {
	priv    ed25519.PrivateKey
	address string
}

// LoadWallet разбирает base58 приватный ключ (64 байта ed25519).
// Если задан encryptionKey, ключ сперва расшифровывается AES-GCM.
func LoadWallet(privateKey, encryptionKey string) (*Wallet, error) {
	if privateKey == "" {
		return nil, fmt.Errorf("wallet: private key is empty")
	}

	if encryptionKey != "" {
		decrypted, err := crypto.Decrypt(privateKey, []byte(encryptionKey))
		if err != nil {
			return nil, fmt.Errorf("wallet: decrypt private key: %w", err)
		}
		privateKey = decrypted
	}

	raw, err := base58.Decode(privateKey)
	if err != nil {
		return nil, fmt.Errorf("wallet: decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)

	return &Wallet{
		priv:    priv,
		address: base58.Encode(pub),
	}, nil
}

// Address возвращает публичный адрес кошелька (base58)
func (w *Wallet) Address() string { return w.address }

// SignTransaction подписывает сериализованную транзакцию Solana.
//
// Формат: compact-u16 счётчик подписей, затем подписи по 64 байта,
// затем message. Jupiter возвращает транзакцию с placeholder-подписью,
// мы заполняем первую (fee payer - наш кошелёк).
func (w *Wallet) SignTransaction(txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("wallet: decode transaction: %w", err)
	}

	numSigs, offset, err := decodeShortVec(raw)
	if err != nil {
		return "", fmt.Errorf("wallet: parse transaction: %w", err)
	}
	if numSigs < 1 {
		return "", fmt.Errorf("wallet: transaction has no signature slots")
	}

	msgStart := offset + numSigs*ed25519.SignatureSize
	if msgStart >= len(raw) {
		return "", fmt.Errorf("wallet: transaction truncated")
	}

	sig := ed25519.Sign(w.priv, raw[msgStart:])
	copy(raw[offset:offset+ed25519.SignatureSize], sig)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeShortVec разбирает compact-u16 из начала буфера
func decodeShortVec(data []byte) (value, bytesRead int, err error) {
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("short vec truncated")
		}
		b := int(data[i])
		value |= (b & 0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("short vec too long")
}
