package models

// SeriesDescription is the pixel-free summary of one series. It is what gets
// cached, persisted and returned by the API.
type SeriesDescription struct {
	PatientID         string `json:"patient_id"`
	StudyID           string `json:"study_id"`
	SeriesID          string `json:"series_id"`
	SeriesFileName    string `json:"series_file_name"`
	SeriesDate        string `json:"series_date"`
	SeriesTime        string `json:"series_time"`
	SeriesDescription string `json:"series_description"`
	StudyDescription  string `json:"study_description"`
	PrivateStudyDate  string `json:"private_study_date"`
	Thumbnail         string `json:"thumbnail,omitempty"`
}

// StudyDescription is the pixel-free summary of a study and its series
type StudyDescription struct {
	StudyID          string               `json:"study_id"`
	StudyDate        string               `json:"study_date"`
	StudyTime        string               `json:"study_time"`
	StudyDescription string               `json:"study_description"`
	StudyDirectory   string               `json:"study_directory"`
	Series           []*SeriesDescription `json:"series"`
}

// ScanRequest asks the catalog to index a study directory
type ScanRequest struct {
	Directory string `json:"directory"`
	StudyID   string `json:"study_id"`
}

// SeriesDescriptionRequest replaces the free-text description of a series
type SeriesDescriptionRequest struct {
	Description string `json:"description"`
}

// DeriveRequest copies an image slot to the Target slot
type DeriveRequest struct {
	Target string `json:"target"`
}

// StO2Request derives the Target slot from the ST02 image with Grid as its
// pixels. Scaled grids hold fractions in [0, 1].
type StO2Request struct {
	Target string      `json:"target"`
	Scaled bool        `json:"scaled"`
	Grid   [][]float64 `json:"grid"`
}

// ImageInfo describes one image slot of a series
type ImageInfo struct {
	FileName                  string  `json:"file_name"`
	ImageType                 string  `json:"image_type"`
	State                     string  `json:"state"`
	Kind                      string  `json:"kind"`
	Rows                      int     `json:"rows"`
	Columns                   int     `json:"columns"`
	Frames                    int     `json:"frames"`
	BitsAllocated             int     `json:"bits_allocated"`
	SamplesPerPixel           int     `json:"samples_per_pixel"`
	PhotometricInterpretation string  `json:"photometric_interpretation"`
	Modality                  string  `json:"modality"`
	WindowCenter              float64 `json:"window_center"`
	WindowWidth               float64 `json:"window_width"`
	MinPixelValue             float64 `json:"min_pixel_value"`
	MaxPixelValue             float64 `json:"max_pixel_value"`
	Signed                    bool    `json:"signed"`
	StudyDate                 string  `json:"study_date"`
	StudyTime                 string  `json:"study_time"`
	SeriesDescription         string  `json:"series_description"`
	SensorBoardTemperature    string  `json:"sensor_board_temperature,omitempty"`
	LEDBoardTemperature       string  `json:"led_board_temperature,omitempty"`

	Header []string `json:"header,omitempty"`
}

// PixelValueResponse is the answer to a single pixel query
type PixelValueResponse struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Frame int `json:"frame"`
	Value int `json:"value"`
}
