package imaging

import (
	"fmt"
	"path/filepath"

	"github.com/otcheredev/ris-dicom-imaging/internal/models"
	"github.com/rs/zerolog/log"
)

// Thumbnailer renders a base64 PNG thumbnail of the image file at path
type Thumbnailer interface {
	Thumbnail(path string, width, height int) (string, error)
}

// ThumbnailSize is the edge length of series thumbnails
const ThumbnailSize = 64

// Series holds up to one image per ImageType plus the series description
type Series struct {
	Description models.SeriesDescription

	parent *Study
	slots  [SlotCount]*Image
}

// NewSeries creates a series for patientID, optionally attached to parent and
// initialised from img.
func NewSeries(patientID string, parent *Study, img *Image, thumbs Thumbnailer) (*Series, error) {
	s := &Series{parent: parent}
	s.Description.PatientID = patientID
	if parent != nil {
		s.Description.StudyID = parent.Description.StudyID
	}
	if img == nil {
		return s, nil
	}
	if err := s.InitializeFromImage(img, thumbs); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSeriesFromDescription rebuilds an image-less series from its description
func NewSeriesFromDescription(desc models.SeriesDescription) *Series {
	return &Series{Description: desc}
}

// InitializeFromImage fills the description from img and stores img in its
// slot. The thumbnail is read from the series' PNG image file; a missing
// thumbnail leaves the field empty.
func (s *Series) InitializeFromImage(img *Image, thumbs Thumbnailer) error {
	name := filepath.Base(img.FileName())
	if name == "" || name == "." {
		return fmt.Errorf("image has no file name")
	}
	stem := name[:len(name)-1]

	s.Description.SeriesFileName = stem
	s.Description.SeriesID = stem
	s.Description.SeriesDescription = img.Clinical.SeriesDescription
	s.Description.StudyDescription = img.Clinical.StudyDescription
	s.Description.SeriesDate = img.Clinical.StudyDate
	s.Description.SeriesTime = img.Clinical.PrivateStudyDate
	s.Description.PrivateStudyDate = img.Clinical.PrivateStudyDate

	s.Description.Thumbnail = ""
	if thumbs != nil {
		full := img.FileName()
		thumbPath := full[:len(full)-1] + "2.png"
		thumb, err := thumbs.Thumbnail(thumbPath, ThumbnailSize, ThumbnailSize)
		if err != nil {
			log.Debug().Err(err).Str("series_id", stem).Msg("no thumbnail for series")
		} else {
			s.Description.Thumbnail = thumb
		}
	}

	return s.SetImage(img)
}

// Parent returns the study the series belongs to, if any
func (s *Series) Parent() *Study { return s.parent }

// ID returns the series identifier
func (s *Series) ID() string { return s.Description.SeriesID }

// SetImage stores img in the slot for its type, replacing any previous image
func (s *Series) SetImage(img *Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrImageTypeNotSet)
	}
	t := img.Type()
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrImageTypeNotSet, img.FileName())
	}
	s.slots[t] = img
	return nil
}

// Image returns the image in slot t, or nil
func (s *Series) Image(t ImageType) *Image {
	if !t.Valid() {
		return nil
	}
	return s.slots[t]
}

// DataAvailable reports whether slot t is occupied
func (s *Series) DataAvailable(t ImageType) bool {
	return s.Image(t) != nil
}

// Types returns the occupied slots in ordinal order
func (s *Series) Types() []ImageType {
	var types []ImageType
	for i, img := range s.slots {
		if img != nil {
			types = append(types, ImageType(i))
		}
	}
	return types
}

// CloneImage returns an isolated copy of slot t, or nil when the slot is
// empty or cloning fails.
func (s *Series) CloneImage(t ImageType) *Image {
	img := s.Image(t)
	if img == nil {
		return nil
	}
	c, err := img.Clone(nil)
	if err != nil {
		log.Debug().Err(err).Str("series_id", s.ID()).Str("image_type", t.String()).Msg("clone failed")
		return nil
	}
	return c
}

// SetStO2Image derives an image of type t from the ST02 slot using grid as
// its pixels and stores it.
func (s *Series) SetStO2Image(grid [][]float64, scaled bool, t ImageType) error {
	derived, err := s.StO2Image(grid, scaled, t)
	if err != nil {
		return err
	}
	return s.SetImage(derived)
}

// StO2Image is SetStO2Image without storing the result; slot t is left as is.
func (s *Series) StO2Image(grid [][]float64, scaled bool, t ImageType) (*Image, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidPixelOperation)
	}
	return s.derive([][]uint16{IngestFloat64(grid, scaled)}, t)
}

// SetStO2ImageUint16 is SetStO2Image for integer grids
func (s *Series) SetStO2ImageUint16(grid [][]uint16, scaled bool, t ImageType) error {
	if grid == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidPixelOperation)
	}
	return s.setDerived([][]uint16{IngestUint16(grid, scaled)}, t)
}

func (s *Series) setDerived(frames [][]uint16, t ImageType) error {
	derived, err := s.derive(frames, t)
	if err != nil {
		return err
	}
	return s.SetImage(derived)
}

func (s *Series) derive(frames [][]uint16, t ImageType) (*Image, error) {
	base := s.Image(ST02)
	if base == nil {
		return nil, fmt.Errorf("%w: %s", ErrSlotEmpty, ST02)
	}
	derived, err := base.CloneAndReplace(frames, t)
	if err != nil {
		return nil, fmt.Errorf("failed to derive %s image: %w", t, err)
	}
	return derived, nil
}

// SetERGBImage derives a colour image of type t from the PNGImage slot and
// stores it.
func (s *Series) SetERGBImage(pixels [][3]byte, t ImageType) error {
	if pixels == nil {
		return fmt.Errorf("%w: nil colour pixels", ErrInvalidPixelOperation)
	}
	base := s.Image(PNGImage)
	if base == nil {
		return fmt.Errorf("%w: %s", ErrSlotEmpty, PNGImage)
	}
	derived, err := base.CloneAndReplaceColor(InterleaveColor(pixels), t)
	if err != nil {
		return fmt.Errorf("failed to derive %s image: %w", t, err)
	}
	return s.SetImage(derived)
}

// NIRWidth returns the NIR image width, or 0 without a NIR image
func (s *Series) NIRWidth() int {
	if img := s.Image(NIR); img != nil {
		return img.Width()
	}
	return 0
}

// NIRHeight returns the NIR image height, or 0 without a NIR image
func (s *Series) NIRHeight() int {
	if img := s.Image(NIR); img != nil {
		return img.Height()
	}
	return 0
}

// NIRFrames returns the number of NIR frames, or 0 without a NIR image
func (s *Series) NIRFrames() int {
	if img := s.Image(NIR); img != nil {
		return img.Frames()
	}
	return 0
}

// PNGWidth returns the PNG image width, or 0 without a PNG image
func (s *Series) PNGWidth() int {
	if img := s.Image(PNGImage); img != nil {
		return img.Width()
	}
	return 0
}

// PNGHeight returns the PNG image height, or 0 without a PNG image
func (s *Series) PNGHeight() int {
	if img := s.Image(PNGImage); img != nil {
		return img.Height()
	}
	return 0
}

// NIRPixelValue reads the NIR image, or returns 0 without one
func (s *Series) NIRPixelValue(row, col, frame int) int {
	img := s.Image(NIR)
	if img == nil {
		return 0
	}
	return img.PixelValue(row, col, frame)
}

// RGBPixelValue reads the PNG image, or returns 0 without one
func (s *Series) RGBPixelValue(row, col, channel int) int {
	img := s.Image(PNGImage)
	if img == nil {
		return 0
	}
	return img.PixelValue(row, col, channel)
}

// StudyDateLongForm renders the series date in long form
func (s *Series) StudyDateLongForm() string {
	return longDate(s.Description.SeriesDate)
}

// LoadDescription applies the description file found in dir. It reports
// whether a non-empty description was applied.
func (s *Series) LoadDescription(dir string) (bool, error) {
	desc, err := ReadSidecar(SidecarPath(dir, s.Description.SeriesFileName))
	if err != nil {
		return false, err
	}
	if desc == "" {
		return false, nil
	}
	s.Description.SeriesDescription = desc
	return true, nil
}

// SaveDescription writes the current description to its file in dir
func (s *Series) SaveDescription(dir string) error {
	return WriteSidecar(SidecarPath(dir, s.Description.SeriesFileName), s.Description.SeriesDescription)
}

// Equal compares series by file stem
func (s *Series) Equal(o *Series) bool {
	return o != nil && s.Description.SeriesFileName == o.Description.SeriesFileName
}
