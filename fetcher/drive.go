package fetcher

import "regexp"

// Known Google Drive URL shapes carrying a file identifier. Share links look
// like https://drive.google.com/file/d/<id>/view?usp=drive_link, direct
// links carry the id as a query parameter.
var driveFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://drive\.google\.com/file/d/([^/]+)/`),
	regexp.MustCompile(`id=([^&]+)`),
}

// ExtractDriveFileID returns the Google Drive file ID embedded in url, or ""
// when no known pattern matches.
func ExtractDriveFileID(url string) string {
	for _, pattern := range driveFilePatterns {
		if match := pattern.FindStringSubmatch(url); match != nil {
			return match[1]
		}
	}
	return ""
}

// BuildDriveDownloadURL constructs the direct-download URL for a file ID.
func BuildDriveDownloadURL(fileID string) string {
	return "https://drive.google.com/uc?export=download&id=" + fileID
}
