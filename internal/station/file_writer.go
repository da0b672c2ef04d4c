package station

import (
	"encoding/json"
	"os"
)

// FileWriter records frames, reports and link changes as JSONL. The frame
// log is replayable with ReplayLog.
type FileWriter struct {
	frameFile *os.File
	alertFile *os.File
	linkFile  *os.File
	frameEnc  *json.Encoder
	alertEnc  *json.Encoder
	linkEnc   *json.Encoder
}

// NewFileWriter creates a FileWriter. alertPath or linkPath may be empty to
// skip those logs.
func NewFileWriter(framePath, alertPath, linkPath string) (*FileWriter, error) {
	ff, err := os.Create(framePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{frameFile: ff, frameEnc: json.NewEncoder(ff)}
	if alertPath != "" {
		af, err := os.Create(alertPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.alertFile = af
		fw.alertEnc = json.NewEncoder(af)
	}
	if linkPath != "" {
		lf, err := os.Create(linkPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.linkFile = lf
		fw.linkEnc = json.NewEncoder(lf)
	}
	return fw, nil
}

// WriteFrame logs a frame event.
func (f *FileWriter) WriteFrame(e FrameEvent) error {
	return f.frameEnc.Encode(e)
}

// WriteAlerts logs a report, if enabled.
func (f *FileWriter) WriteAlerts(e AlertEvent) error {
	if f.alertEnc == nil {
		return nil
	}
	return f.alertEnc.Encode(e)
}

// WriteLink logs a link change, if enabled.
func (f *FileWriter) WriteLink(e LinkEvent) error {
	if f.linkEnc == nil {
		return nil
	}
	return f.linkEnc.Encode(e)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.frameFile, f.alertFile, f.linkFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
