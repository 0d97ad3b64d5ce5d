package gallra

// PhotoEntry is a photo found by Scan, with its tag flattened in.
type PhotoEntry struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	// Modified is milliseconds since the Unix epoch.
	Modified int64  `json:"modified"`
	Rating   int    `json:"rating"`
	Label    string `json:"label"`
	Flagged  bool   `json:"flagged"`
	Rejected bool   `json:"rejected"`
}

// FolderScanResult is the outcome of scanning a single folder.
type FolderScanResult struct {
	Photos     []PhotoEntry `json:"photos"`
	FolderPath string       `json:"folder_path"`
}

// FolderNode is a subfolder in the folder tree.
type FolderNode struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	HasChildren bool   `json:"has_children"`
}

// ExifRecord is the subset of EXIF shown to the user. Absent tags are nil.
type ExifRecord struct {
	DateTaken    *string  `json:"date_taken"`
	CameraMake   *string  `json:"camera_make"`
	CameraModel  *string  `json:"camera_model"`
	ISO          *int     `json:"iso"`
	Aperture     *string  `json:"aperture"`
	ShutterSpeed *string  `json:"shutter_speed"`
	FocalLength  *string  `json:"focal_length"`
	GPSLat       *float64 `json:"gps_lat"`
	GPSLon       *float64 `json:"gps_lon"`
	Width        *int     `json:"width"`
	Height       *int     `json:"height"`
}
