package upload

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/YashubuStudio/Vconf-webgl-glTF/viewport"
)

var ErrInvalidPresenterID = errors.New("発表者番号には英数字が必要です（記号は使用不可）")

// FolderIDLayout formats a submission time as YYYY_MM_DD_HHmm.
const FolderIDLayout = "2006_01_02_1504"

var folderIDPattern = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}_\d{4}$`)

// SanitizePresenterID keeps only ASCII letters and digits.
func SanitizePresenterID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FolderID is the submission folder prefix for t, in t's location.
func FolderID(t time.Time) string {
	return t.Format(FolderIDLayout)
}

func ValidFolderID(s string) bool {
	return folderIDPattern.MatchString(s)
}

// Payload is one submission. It is built once per submit and never resent automatically.
type Payload struct {
	FolderID    string
	PresenterID string
	Passcode    string
	ModelName   string
	Model       []byte
	Views       [viewport.Count][]byte
}

// NewPayload sanitizes presenterID and stamps the folder id from now.
// It fails with ErrInvalidPresenterID when nothing usable is left of presenterID.
func NewPayload(now time.Time, presenterID, passcode, modelName string, model []byte, views [viewport.Count][]byte) (*Payload, error) {
	id := SanitizePresenterID(presenterID)
	if id == "" {
		return nil, ErrInvalidPresenterID
	}
	return &Payload{
		FolderID:    FolderID(now),
		PresenterID: id,
		Passcode:    passcode,
		ModelName:   modelName,
		Model:       model,
		Views:       views,
	}, nil
}

func (p *Payload) validate() error {
	if p.PresenterID == "" || SanitizePresenterID(p.PresenterID) != p.PresenterID {
		return ErrInvalidPresenterID
	}
	if !ValidFolderID(p.FolderID) {
		return errors.New("invalid folder id: " + p.FolderID)
	}
	return nil
}
