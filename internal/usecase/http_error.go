package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 検証エラー：書き込み前に弾く
func newValidationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

// 途中の書き込み失敗：補償後に下層のメッセージ付きで返す
func newWriteError(message string) error {
	return NewHTTPError(http.StatusInternalServerError, message)
}

// 補償失敗：自動復旧できないため最重度。サポート連絡を促す
func newCompensationError(message string) error {
	return NewHTTPError(http.StatusInternalServerError,
		"automatic rollback failed, manual intervention required: "+message)
}
