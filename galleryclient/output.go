package galleryclient

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatGallery(w io.Writer, snap Snapshot) error
	FormatURL(w io.Writer, filename, url string) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatGallery prints one line per slot, marking the selection with '>'.
func (f *HumanFormatter) FormatGallery(w io.Writer, snap Snapshot) error {
	maxNameLen := 8 // "FILENAME"
	for i := range snap.Slots {
		if len(snap.Slots[i].Filename) > maxNameLen {
			maxNameLen = len(snap.Slots[i].Filename)
		}
	}
	if maxNameLen > 40 {
		maxNameLen = 40
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Gallery: %s (%d images)\n\n", snap.Directory, len(snap.Slots))
		_, _ = fmt.Fprintf(w, "  %-*s  %-7s  %s\n", maxNameLen, "FILENAME", "STATE", "URL")
		_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 7), strings.Repeat("-", 20))
	}

	for i := range snap.Slots {
		s := &snap.Slots[i]
		marker := " "
		if i == snap.Selected {
			marker = ">"
		}

		name := s.Filename
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-7s  %s\n", marker, maxNameLen, name, s.State, s.URL)
	}

	if snap.FullURL != "" && !f.Quiet {
		_, _ = fmt.Fprintf(w, "\nFull resolution (%s):\n  %s\n", snap.FullFilename, snap.FullURL)
	}
	if snap.Err != nil {
		_, _ = fmt.Fprintln(w)
		_ = f.FormatError(w, snap.Err)
	}
	return nil
}

// FormatURL prints a single signed URL.
func (f *HumanFormatter) FormatURL(w io.Writer, filename, url string) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, url)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s\n  %s\n", filename, url)
	return nil
}

// FormatError formats an error as human-readable text, followed by the
// server's details when present.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	if details := ErrorDetails(err); details != "" {
		_, _ = fmt.Fprintf(w, "Details: %s\n", details)
	}
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Endpoint) > maxEndpointLen {
			maxEndpointLen = len(profiles[i].Endpoint)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxEndpointLen > 50 {
		maxEndpointLen = 50
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "DIRECTORY")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		directory := p.Directory
		if directory == "" {
			directory = "(server)"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, directory)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:      %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint:  %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Directory: %s\n", orNotSet(profile.Directory))
	_, _ = fmt.Fprintf(w, "Images:    %s\n", orNotSet(strings.Join(profile.Images, ", ")))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatGallery formats the gallery state as JSON.
func (f *JSONFormatter) FormatGallery(w io.Writer, snap Snapshot) error {
	type jsonSlot struct {
		Filename string `json:"filename"`
		State    string `json:"state"`
		URL      string `json:"url,omitempty"`
	}

	output := struct {
		Directory    string     `json:"directory"`
		Selected     int        `json:"selected"`
		Slots        []jsonSlot `json:"slots"`
		FullFilename string     `json:"full_filename,omitempty"`
		FullURL      string     `json:"full_url,omitempty"`
		Error        string     `json:"error,omitempty"`
		Details      string     `json:"details,omitempty"`
	}{
		Directory:    snap.Directory,
		Selected:     snap.Selected,
		Slots:        make([]jsonSlot, len(snap.Slots)),
		FullFilename: snap.FullFilename,
		FullURL:      snap.FullURL,
	}

	for i := range snap.Slots {
		s := &snap.Slots[i]
		output.Slots[i] = jsonSlot{Filename: s.Filename, State: s.State.String(), URL: s.URL}
	}
	if snap.Err != nil {
		output.Error = snap.Err.Error()
		output.Details = ErrorDetails(snap.Err)
	}

	return writeJSON(w, output)
}

// FormatURL formats a single signed URL as JSON.
func (f *JSONFormatter) FormatURL(w io.Writer, filename, url string) error {
	return writeJSON(w, struct {
		Filename  string `json:"filename"`
		SignedURL string `json:"signedUrl"`
	}{filename, url})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}{
		Error:   err.Error(),
		Details: ErrorDetails(err),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	output := struct {
		Profiles []Profile `json:"profiles"`
	}{
		Profiles: make([]Profile, len(profiles)),
	}

	for i := range profiles {
		p := profiles[i]
		p.Default = p.Name == defaultName
		output.Profiles[i] = p
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	profile.Default = isDefault
	return writeJSON(w, profile)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
