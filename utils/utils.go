package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func GenerateSlug(name string) string {
	// strip accents
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Paging clamps page and limit query values.
func Paging(pageStr, limitStr string, defaultLimit, maxLimit int) (page, limit int, skip int64) {
	page = ParseIntDefault(pageStr, 1)
	limit = ParseIntDefault(limitStr, defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit, int64((page - 1) * limit)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(secret, userID, email, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Formats whose content cannot be sniffed reliably; the extension decides.
var opaqueExtensions = map[string]bool{
	".stl":  true,
	".obj":  true,
	".3mf":  true,
	".step": true,
	".stp":  true,
}

var sniffedMime = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

type FileValidator struct {
	allowedExt map[string]bool
	maxSize    int64
}

func NewReferenceFileValidator(extensions []string, maxSizeMB int) *FileValidator {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 25
	}
	return &FileValidator{allowedExt: allowed, maxSize: int64(maxSizeMB) << 20}
}

// ValidateFile checks size and extension, and sniffs the content of formats
// that carry a signature. It returns the content type to store.
func (v *FileValidator) ValidateFile(fh *multipart.FileHeader) (string, error) {
	if fh.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("file extension %q not allowed", ext)
	}
	if opaqueExtensions[ext] {
		return "application/octet-stream", nil
	}

	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil || n == 0 {
		return "", fmt.Errorf("failed to read file header")
	}

	detected := strings.ToLower(http.DetectContentType(buffer[:n]))
	if !sniffedMime[detected] {
		return "", fmt.Errorf("invalid file type %s", detected)
	}
	return detected, nil
}
