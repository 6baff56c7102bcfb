package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/ris-dicom-imaging/internal/cache"
	"github.com/otcheredev/ris-dicom-imaging/internal/imaging"
	"github.com/otcheredev/ris-dicom-imaging/internal/metrics"
	"github.com/otcheredev/ris-dicom-imaging/internal/models"
	"github.com/otcheredev/ris-dicom-imaging/internal/storage"
	"github.com/otcheredev/ris-dicom-imaging/internal/thumbnail"
	"github.com/rs/zerolog/log"
)

// StudyStore persists study descriptions. repository.StudyRepository
// implements it.
type StudyStore interface {
	Save(ctx context.Context, study *models.StudyDescription, imageTypes map[string][]string, patient *models.PatientRecord) error
	GetByStudyID(ctx context.Context, studyID string) (*models.StudyRecord, error)
	List(ctx context.Context, q models.StudyQuery) ([]models.StudyRecord, error)
	UpdateSeriesDescription(ctx context.Context, studyID, seriesID, description string) error
}

// AuditStore records and reads audit entries, newest first.
// repository.AuditRepository implements it.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
	GetByStudyID(ctx context.Context, studyID string) ([]models.AuditLog, error)
}

// CatalogConfig tunes the catalog service
type CatalogConfig struct {
	LazyLoad      bool
	ThumbnailSize int
	CacheTTL      time.Duration
	ReadTimeout   time.Duration
}

// CatalogService indexes study directories and serves their series and
// images. Loaded studies live in an in-process registry; descriptions are
// additionally cached and, when a StudyStore is configured, persisted.
type CatalogService struct {
	store   storage.Storage
	cache   cache.Cache
	thumbs  imaging.Thumbnailer
	studies StudyStore
	audit   AuditStore
	cfg     CatalogConfig

	// mu guards registry and every image reachable from it; image reads may
	// decode pixels lazily, so they take the write lock.
	mu       sync.RWMutex
	registry map[string]*imaging.Study
}

// NewCatalogService creates a catalog service. studies and audit may be nil
// when no database is configured.
func NewCatalogService(store storage.Storage, c cache.Cache, thumbs imaging.Thumbnailer, studies StudyStore, audit AuditStore, cfg CatalogConfig) *CatalogService {
	if cfg.ThumbnailSize <= 0 {
		cfg.ThumbnailSize = imaging.ThumbnailSize
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	return &CatalogService{
		store:    store,
		cache:    c,
		thumbs:   thumbs,
		studies:  studies,
		audit:    audit,
		cfg:      cfg,
		registry: make(map[string]*imaging.Study),
	}
}

// ScanStudy indexes every image file in directory as one study. Files are
// grouped into series by their name without the trailing type digit.
func (s *CatalogService) ScanStudy(ctx context.Context, req models.ScanRequest, userID uuid.UUID) (desc *models.StudyDescription, err error) {
	start := time.Now()
	directory := strings.TrimSuffix(strings.TrimSpace(req.Directory), "/")
	if directory == "" {
		return nil, fmt.Errorf("%w: directory is required", ErrInvalidRequest)
	}
	studyID := strings.TrimSpace(req.StudyID)
	if studyID == "" {
		studyID = storage.Base(directory)
	}
	defer func() {
		metrics.ObserveScan(err)
		s.record(ctx, models.ActionScanStudy, studyID, "", userID, start, err)
	}()

	study, patient, err := s.loadStudy(ctx, directory, studyID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.registry[studyID] = study
	desc = describeStudy(study)
	imageTypes := slotNames(study)
	s.updateGauge()
	s.mu.Unlock()

	if err := s.cache.Clear(ctx, cache.StudyPattern(studyID)); err != nil {
		log.Warn().Err(err).Str("study_id", studyID).Msg("Failed to invalidate cached study")
	}
	s.cacheStudy(ctx, desc)

	if s.studies != nil {
		if err := s.studies.Save(ctx, desc, imageTypes, patient); err != nil {
			log.Error().Err(err).Str("study_id", studyID).Msg("Failed to persist study")
		}
	}

	log.Info().
		Str("study_id", studyID).
		Str("directory", directory).
		Int("series", len(desc.Series)).
		Dur("duration", time.Since(start)).
		Msg("Study scanned")

	return desc, nil
}

// loadStudy reads directory and builds the study without touching the
// registry.
func (s *CatalogService) loadStudy(ctx context.Context, directory, studyID string) (*imaging.Study, *models.PatientRecord, error) {
	paths, err := s.store.List(ctx, directory)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrStudyNotFound, directory)
		}
		if errors.Is(err, storage.ErrInvalidPath) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, nil, fmt.Errorf("failed to list study directory: %w", err)
	}

	study := imaging.NewStudy(directory, studyID)
	byStem := map[string]*imaging.Series{}
	var patient *models.PatientRecord
	var first *imaging.Image

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		name := storage.Base(p)
		if !imaging.ImageTypeFromFileName(name).Valid() {
			continue
		}

		img := s.loadImage(p)
		if img == nil {
			continue
		}
		if first == nil {
			first = img
			patient = patientRecord(img.Clinical.Patient)
		}

		stem := name[:len(name)-1]
		series, ok := byStem[stem]
		if !ok {
			series, err = imaging.NewSeries(img.Clinical.Patient.MRN, nil, img, s.thumbs)
			if err != nil {
				log.Warn().Err(err).Str("file", p).Msg("Skipping image")
				continue
			}
			series.Description.StudyID = studyID
			s.applySidecar(ctx, directory, series)
			byStem[stem] = series
			study.AddSeries(series)
			continue
		}
		if err := series.SetImage(img); err != nil {
			log.Warn().Err(err).Str("file", p).Msg("Skipping image")
		}
	}

	if first == nil {
		return nil, nil, fmt.Errorf("%w: no images in %s", ErrStudyNotFound, directory)
	}

	imaging.SortStudies([]*imaging.Study{study}, true)
	study.Description.StudyTime = first.Clinical.StudyTime
	sorted := study.Series()
	if len(sorted) > 0 {
		newest := sorted[0]
		study.Description.StudyDate = newest.Description.SeriesDate
		if types := newest.Types(); len(types) > 0 {
			study.Description.StudyTime = newest.Image(types[0]).Clinical.StudyTime
		}
	}
	for _, series := range sorted {
		if d := series.Description.StudyDescription; d != "" {
			study.Description.StudyDescription = d
			break
		}
	}

	return study, patient, nil
}

func (s *CatalogService) loadImage(p string) *imaging.Image {
	start := time.Now()
	src := &storageSource{store: s.store, path: p, timeout: s.cfg.ReadTimeout}
	img, err := imaging.Load(src, imaging.WithLazyLoad(s.cfg.LazyLoad))
	if img == nil {
		log.Warn().Err(err).Str("file", p).Msg("Failed to read image")
		return nil
	}
	metrics.ObserveImageLoad(img.Kind().String(), start)
	if err != nil {
		log.Debug().Err(err).Str("file", p).Str("kind", img.Kind().String()).Msg("Image loaded with placeholder pixels")
	}
	return img
}

// applySidecar replaces the series description with the one stored next to
// the series files, if any.
func (s *CatalogService) applySidecar(ctx context.Context, directory string, series *imaging.Series) {
	p := sidecarPath(directory, series.Description.SeriesFileName)
	data, err := s.store.Get(ctx, p)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("file", p).Msg("Failed to read series description")
		return
	}
	desc, err := imaging.ParseSidecar(data)
	if err != nil {
		log.Warn().Err(err).Str("file", p).Msg("Ignoring series description")
		return
	}
	if desc != "" {
		series.Description.SeriesDescription = desc
	}
}

func sidecarPath(directory, seriesFileName string) string {
	return storage.Join(directory, seriesFileName+imaging.SidecarSuffix)
}

// ListStudies returns the studies matching q, newest first. Studies known only
// to the database are included.
func (s *CatalogService) ListStudies(ctx context.Context, q models.StudyQuery) ([]models.StudySummary, error) {
	s.mu.RLock()
	var list []*imaging.Study
	for _, st := range s.registry {
		list = append(list, imaging.NewStudyFromDescription(*describeStudy(st)))
	}
	s.mu.RUnlock()

	if s.studies != nil {
		recs, err := s.studies.List(ctx, models.StudyQuery{PatientID: q.PatientID, StudyDate: q.StudyDate, StudyDescription: q.StudyDescription})
		if err != nil {
			return nil, err
		}
		known := make(map[string]bool, len(list))
		for _, st := range list {
			known[st.ID()] = true
		}
		for _, rec := range recs {
			if !known[rec.StudyID] {
				list = append(list, imaging.NewStudyFromDescription(*rec.Description()))
			}
		}
	}

	var matched []*imaging.Study
	for _, st := range list {
		if matchStudy(st, q) {
			matched = append(matched, st)
		}
	}
	imaging.SortStudies(matched, false)

	if q.Offset > 0 {
		matched = matched[min(q.Offset, len(matched)):]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]models.StudySummary, 0, len(matched))
	for _, st := range matched {
		out = append(out, models.StudySummary{
			StudyID:          st.ID(),
			StudyDate:        st.Description.StudyDate,
			StudyTime:        st.Description.StudyTime,
			StudyDescription: st.Description.StudyDescription,
			StudyDirectory:   st.Directory(),
			NumberOfSeries:   len(st.Series()),
			StudyDateLong:    st.StudyDateLongForm(),
		})
	}
	return out, nil
}

func matchStudy(st *imaging.Study, q models.StudyQuery) bool {
	if q.StudyDate != "" && st.Description.StudyDate != q.StudyDate {
		return false
	}
	if q.StudyDescription != "" && !strings.Contains(strings.ToLower(st.Description.StudyDescription), strings.ToLower(q.StudyDescription)) {
		return false
	}
	if q.PatientID != "" {
		for _, series := range st.Series() {
			if series.Description.PatientID == q.PatientID {
				return true
			}
		}
		return false
	}
	return true
}

// GetStudy returns the description of one study
func (s *CatalogService) GetStudy(ctx context.Context, studyID string) (*models.StudyDescription, error) {
	var desc models.StudyDescription
	err := cache.GetJSON(ctx, s.cache, cache.StudyKey(studyID), &desc)
	metrics.ObserveCache("study", err == nil)
	if err == nil {
		return &desc, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Str("study_id", studyID).Msg("Study cache read failed")
	}

	s.mu.RLock()
	st, ok := s.registry[studyID]
	var found *models.StudyDescription
	if ok {
		found = describeStudy(st)
	}
	s.mu.RUnlock()

	if found == nil && s.studies != nil {
		rec, err := s.studies.GetByStudyID(ctx, studyID)
		if err != nil {
			log.Debug().Err(err).Str("study_id", studyID).Msg("Study not in database")
		} else {
			found = rec.Description()
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrStudyNotFound, studyID)
	}

	s.cacheStudy(ctx, found)
	return found, nil
}

// GetSeries returns the description of one series
func (s *CatalogService) GetSeries(ctx context.Context, studyID, seriesID string) (*models.SeriesDescription, error) {
	study, err := s.GetStudy(ctx, studyID)
	if err != nil {
		return nil, err
	}
	for _, d := range study.Series {
		if d.SeriesID == seriesID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrSeriesNotFound, studyID, seriesID)
}

// ImageInfo describes the image in slot t of a series, decoding its pixels
// when needed.
func (s *CatalogService) ImageInfo(ctx context.Context, studyID, seriesID string, t imaging.ImageType, withHeader bool) (*models.ImageInfo, error) {
	var info *models.ImageInfo
	err := s.withImage(ctx, studyID, seriesID, t, func(_ *imaging.Series, img *imaging.Image) error {
		info = describeImage(img, withHeader)
		return nil
	})
	return info, err
}

// PixelValue reads one sample. Out of range queries report -1.
func (s *CatalogService) PixelValue(ctx context.Context, studyID, seriesID string, t imaging.ImageType, row, col, frame int) (*models.PixelValueResponse, error) {
	resp := &models.PixelValueResponse{Row: row, Col: col, Frame: frame}
	err := s.withImage(ctx, studyID, seriesID, t, func(_ *imaging.Series, img *imaging.Image) error {
		resp.Value = img.PixelValue(row, col, frame)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Thumbnail renders frame 0 of slot t as a PNG scaled to size pixels wide.
// A non-positive size uses the configured thumbnail size.
func (s *CatalogService) Thumbnail(ctx context.Context, studyID, seriesID string, t imaging.ImageType, size int) ([]byte, error) {
	if size <= 0 {
		size = s.cfg.ThumbnailSize
	}
	key := cache.ThumbnailKey(studyID, seriesID, t.String(), size)
	data, err := s.cache.Get(ctx, key)
	metrics.ObserveCache("thumbnail", err == nil)
	if err == nil {
		return data, nil
	}

	err = s.withImage(ctx, studyID, seriesID, t, func(_ *imaging.Series, img *imaging.Image) error {
		var rerr error
		data, rerr = thumbnail.RenderPNG(img, 0, size)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache thumbnail")
	}
	return data, nil
}

// UpdateSeriesDescription stores a new free-text description for a series in
// its description file and, when configured, the database.
func (s *CatalogService) UpdateSeriesDescription(ctx context.Context, studyID, seriesID, description string, userID uuid.UUID) (desc *models.SeriesDescription, err error) {
	start := time.Now()
	defer func() {
		s.record(ctx, models.ActionUpdateDescription, studyID, seriesID, userID, start, err)
	}()

	if strings.ContainsAny(description, "\r\n") {
		return nil, fmt.Errorf("%w: description must be a single line", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	study, series, err := s.lookupLocked(ctx, studyID, seriesID)
	if err != nil {
		return nil, err
	}

	p := sidecarPath(study.Directory(), series.Description.SeriesFileName)
	if err := s.store.Put(ctx, p, imaging.FormatSidecar(description)); err != nil {
		return nil, fmt.Errorf("failed to write series description: %w", err)
	}
	series.Description.SeriesDescription = description

	if s.studies != nil {
		if err := s.studies.UpdateSeriesDescription(ctx, studyID, seriesID, description); err != nil {
			log.Error().Err(err).Str("study_id", studyID).Str("series_id", seriesID).Msg("Failed to persist series description")
		}
	}
	if err := s.cache.Clear(ctx, cache.StudyPattern(studyID)); err != nil {
		log.Warn().Err(err).Str("study_id", studyID).Msg("Failed to invalidate cached study")
	}

	d := series.Description
	return &d, nil
}

// SaveDerived copies the image in slot src to slot dst and writes it next to
// the source under the derived file name.
func (s *CatalogService) SaveDerived(ctx context.Context, studyID, seriesID string, src, dst imaging.ImageType, userID uuid.UUID) (info *models.ImageInfo, err error) {
	start := time.Now()
	defer func() {
		s.record(ctx, models.ActionSaveDerived, studyID, seriesID, userID, start, err)
	}()

	if !dst.Valid() {
		return nil, fmt.Errorf("%w: target type %s", ErrInvalidRequest, dst)
	}

	err = s.withImage(ctx, studyID, seriesID, src, func(series *imaging.Series, img *imaging.Image) error {
		derived, err := img.Clone(nil)
		if err != nil {
			return err
		}
		derived.SetType(dst)
		if err := s.persistImage(ctx, series, derived); err != nil {
			return err
		}
		info = describeImage(derived, false)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateThumbnails(ctx, studyID)
	return info, nil
}

// DeriveStO2 builds slot t from the series' ST02 image with grid as its
// pixels and writes it next to the source. Scaled grids hold fractions in
// [0, 1].
func (s *CatalogService) DeriveStO2(ctx context.Context, studyID, seriesID string, grid [][]float64, scaled bool, t imaging.ImageType, userID uuid.UUID) (info *models.ImageInfo, err error) {
	start := time.Now()
	defer func() {
		s.record(ctx, models.ActionSaveDerived, studyID, seriesID, userID, start, err)
	}()

	if !t.Valid() {
		return nil, fmt.Errorf("%w: target type %s", ErrInvalidRequest, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, series, err := s.lookupLocked(ctx, studyID, seriesID)
	if err != nil {
		return nil, err
	}
	derived, err := series.StO2Image(grid, scaled, t)
	if err != nil {
		if errors.Is(err, imaging.ErrSlotEmpty) {
			return nil, fmt.Errorf("%w: %v", ErrImageNotFound, err)
		}
		return nil, err
	}
	if err := s.persistImage(ctx, series, derived); err != nil {
		return nil, err
	}
	s.invalidateThumbnails(ctx, studyID)
	return describeImage(derived, false), nil
}

// persistImage encodes img, writes it under its derived name and places it in its
// slot. The caller holds mu.
func (s *CatalogService) persistImage(ctx context.Context, series *imaging.Series, img *imaging.Image) error {
	name := img.OutputFileName()
	if name == "" {
		return fmt.Errorf("%w: image has no file name", ErrInvalidRequest)
	}
	data, err := img.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	img.Rename(name, imaging.NewBytesSource(name, data))
	return series.SetImage(img)
}

func (s *CatalogService) invalidateThumbnails(ctx context.Context, studyID string) {
	if err := s.cache.Clear(ctx, cache.StudyPattern(studyID)); err != nil {
		log.Warn().Err(err).Str("study_id", studyID).Msg("Failed to invalidate cached study")
	}
}

// withImage runs fn on the image in slot t while holding the registry lock
func (s *CatalogService) withImage(ctx context.Context, studyID, seriesID string, t imaging.ImageType, fn func(*imaging.Series, *imaging.Image) error) error {
	if !t.Valid() {
		return fmt.Errorf("%w: image type %s", ErrInvalidRequest, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, series, err := s.lookupLocked(ctx, studyID, seriesID)
	if err != nil {
		return err
	}
	img := series.Image(t)
	if img == nil {
		return fmt.Errorf("%w: %s/%s/%s", ErrImageNotFound, studyID, seriesID, t)
	}
	return fn(series, img)
}

// lookupLocked finds a loaded series. A study known only to the database is
// rescanned from its directory first. The caller holds mu for writing.
func (s *CatalogService) lookupLocked(ctx context.Context, studyID, seriesID string) (*imaging.Study, *imaging.Series, error) {
	study, ok := s.registry[studyID]
	if !ok {
		if s.studies == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrStudyNotFound, studyID)
		}
		rec, err := s.studies.GetByStudyID(ctx, studyID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrStudyNotFound, studyID)
		}
		study, _, err = s.loadStudy(ctx, rec.Directory, studyID)
		if err != nil {
			return nil, nil, err
		}
		s.registry[studyID] = study
		s.updateGauge()
	}

	series := study.FindSeries(seriesID)
	if series == nil {
		return nil, nil, fmt.Errorf("%w: %s/%s", ErrSeriesNotFound, studyID, seriesID)
	}
	return study, series, nil
}

func (s *CatalogService) cacheStudy(ctx context.Context, desc *models.StudyDescription) {
	if err := cache.SetJSON(ctx, s.cache, cache.StudyKey(desc.StudyID), desc, s.cfg.CacheTTL); err != nil {
		log.Warn().Err(err).Str("study_id", desc.StudyID).Msg("Failed to cache study")
	}
}

// updateGauge refreshes the indexed series count. The caller holds mu.
func (s *CatalogService) updateGauge() {
	n := 0
	for _, st := range s.registry {
		n += len(st.Series())
	}
	metrics.SeriesIndexed.Set(float64(n))
}

// AuditLog returns the audit entries of a study, of a user, or of a user
// within a study.
func (s *CatalogService) AuditLog(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, error) {
	if s.audit == nil {
		return nil, ErrAuditUnavailable
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", ErrInvalidRequest)
	}

	if q.StudyID == "" {
		if q.UserID == uuid.Nil {
			return nil, fmt.Errorf("%w: study or user is required", ErrInvalidRequest)
		}
		logs, err := s.audit.GetByUserID(ctx, q.UserID, q.Limit, q.Offset)
		if err != nil {
			return nil, err
		}
		if logs == nil {
			logs = []models.AuditLog{}
		}
		return logs, nil
	}

	all, err := s.audit.GetByStudyID(ctx, q.StudyID)
	if err != nil {
		return nil, err
	}
	logs := make([]models.AuditLog, 0, len(all))
	for _, entry := range all {
		if q.UserID != uuid.Nil && entry.UserID != q.UserID {
			continue
		}
		logs = append(logs, entry)
	}
	if q.Offset >= len(logs) {
		return []models.AuditLog{}, nil
	}
	logs = logs[q.Offset:]
	if q.Limit > 0 && q.Limit < len(logs) {
		logs = logs[:q.Limit]
	}
	return logs, nil
}

func (s *CatalogService) record(ctx context.Context, action, studyID, seriesID string, userID uuid.UUID, start time.Time, err error) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:   userID,
		Action:   action,
		StudyID:  studyID,
		SeriesID: seriesID,
		Status:   "success",
		Duration: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = "failure"
		entry.ErrorMessage = err.Error()
	}
	if aerr := s.audit.Create(context.WithoutCancel(ctx), entry); aerr != nil {
		log.Error().Err(aerr).Str("action", action).Msg("Failed to write audit log")
	}
}

// describeStudy copies the study description with its series in their
// current order. The caller holds mu.
func describeStudy(st *imaging.Study) *models.StudyDescription {
	desc := st.Description
	desc.Series = make([]*models.SeriesDescription, 0, len(st.Series()))
	for _, series := range st.Series() {
		d := series.Description
		desc.Series = append(desc.Series, &d)
	}
	return &desc
}

// slotNames lists the occupied slots per series id. The caller holds mu.
func slotNames(st *imaging.Study) map[string][]string {
	out := map[string][]string{}
	for _, series := range st.Series() {
		for _, t := range series.Types() {
			out[series.ID()] = append(out[series.ID()], t.String())
		}
	}
	return out
}

func describeImage(img *imaging.Image, withHeader bool) *models.ImageInfo {
	md := img.Metadata()
	info := &models.ImageInfo{
		FileName:                  img.FileName(),
		ImageType:                 img.Type().String(),
		Kind:                      md.Kind.String(),
		PhotometricInterpretation: md.PhotometricInterpretation,
		Modality:                  md.Modality,
		StudyDate:                 img.Clinical.StudyDate,
		StudyTime:                 img.Clinical.StudyTime,
		SeriesDescription:         img.Clinical.SeriesDescription,
		SensorBoardTemperature:    img.Clinical.SensorBoardTemperature,
		LEDBoardTemperature:       img.Clinical.LEDBoardTemperature,
	}
	if wl, err := img.Window(); err == nil {
		info.WindowCenter = wl.Center
		info.WindowWidth = wl.Width
		info.MinPixelValue = wl.Min
		info.MaxPixelValue = wl.Max
		info.Signed = img.Signed()
	}
	// Geometry is read after the window so placeholder images report the
	// placeholder size.
	info.State = img.State().String()
	info.Rows = img.Height()
	info.Columns = img.Width()
	info.Frames = img.Frames()
	info.BitsAllocated = img.BitsAllocated()
	info.SamplesPerPixel = img.SamplesPerPixel()
	if withHeader {
		info.Header = img.HeaderLines()
	}
	return info
}

func patientRecord(p imaging.PatientInfo) *models.PatientRecord {
	if p.MRN == "" {
		return nil
	}
	return &models.PatientRecord{
		MRN:        p.MRN,
		LastName:   p.LastName,
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		BirthDate:  p.DOBYear + p.DOBMonth + p.DOBDay,
		Gender:     p.Gender.String(),
	}
}
