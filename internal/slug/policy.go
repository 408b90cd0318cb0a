// Package slug описывает правила генерации и проверки коротких идентификаторов ссылок.
package slug

import (
	"crypto/rand"
	"io"
	"math/big"
	"regexp"
	"strconv"
)

// URLSafe символы, допустимые в сегменте пути без экранирования (RFC 3986 unreserved)
const URLSafe = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// Длины по умолчанию, если шаблон не содержит диапазона {m,n}
const (
	DefaultMinLen = 5
	DefaultMaxLen = 10
)

var lengthRange = regexp.MustCompile(`\{(\d+),(\d+)\}`)

// Policy задаёт алфавит и допустимую длину слагов. После создания не изменяется.
type Policy struct {
	alphabet []byte
	allowed  [256]bool
	minLen   int
	maxLen   int
	rnd      io.Reader
}

// Option настраивает Policy
type Option func(*Policy)

// WithRandom подменяет источник случайности. По умолчанию crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(p *Policy) {
		if r != nil {
			p.rnd = r
		}
	}
}

// Derive строит политику по текстовому шаблону вида ^[A-Za-z0-9]{5,10}$.
// Из шаблона берётся только диапазон длины, алфавит всегда URLSafe.
// Некорректный или отсутствующий диапазон заменяется на 5..10.
func Derive(pattern string, opts ...Option) *Policy {
	minLen, maxLen := parseRange(pattern)

	p := &Policy{
		alphabet: []byte(URLSafe),
		minLen:   minLen,
		maxLen:   maxLen,
		rnd:      rand.Reader,
	}
	for _, c := range p.alphabet {
		p.allowed[c] = true
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func parseRange(pattern string) (int, int) {
	m := lengthRange.FindStringSubmatch(pattern)
	if m == nil {
		return DefaultMinLen, DefaultMaxLen
	}
	minLen, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultMinLen, DefaultMaxLen
	}
	maxLen, err := strconv.Atoi(m[2])
	if err != nil {
		return DefaultMinLen, DefaultMaxLen
	}
	if minLen <= 0 || maxLen < minLen {
		return DefaultMinLen, DefaultMaxLen
	}
	return minLen, maxLen
}

// MinLen минимальная длина слага
func (p *Policy) MinLen() int { return p.minLen }

// MaxLen максимальная длина слага
func (p *Policy) MaxLen() int { return p.maxLen }

// Alphabet возвращает копию алфавита
func (p *Policy) Alphabet() string { return string(p.alphabet) }

// Generate возвращает случайного кандидата. Уникальность не гарантируется,
// за неё отвечает хранилище.
func (p *Policy) Generate() (string, error) {
	length := p.minLen
	if p.maxLen > p.minLen {
		n, err := rand.Int(p.rnd, big.NewInt(int64(p.maxLen-p.minLen+1)))
		if err != nil {
			return "", err
		}
		length += int(n.Int64())
	}

	size := big.NewInt(int64(len(p.alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(p.rnd, size)
		if err != nil {
			return "", err
		}
		buf[i] = p.alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Validate проверяет длину и алфавит кандидата
func (p *Policy) Validate(candidate string) bool {
	if len(candidate) < p.minLen || len(candidate) > p.maxLen {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if !p.allowed[candidate[i]] {
			return false
		}
	}
	return true
}

// SpaceSize количество различных слагов, которые допускает политика
func (p *Policy) SpaceSize() *big.Int {
	total := new(big.Int)
	base := big.NewInt(int64(len(p.alphabet)))
	for l := p.minLen; l <= p.maxLen; l++ {
		total.Add(total, new(big.Int).Exp(base, big.NewInt(int64(l)), nil))
	}
	return total
}
