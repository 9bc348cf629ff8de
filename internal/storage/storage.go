// Package storage moves recordings and produced clips between the local
// filesystem and the MinIO object store. The worker downloads one source
// object, transcodes it, and uploads the result; nothing here streams.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Store is the object store surface the worker depends on.
type Store interface {
	// Download copies an object to a local file path.
	Download(ctx context.Context, objectPath, localPath string) error
	// Upload copies a local file to an object path.
	Upload(ctx context.Context, localPath, objectPath string) error
	// Exists reports whether the object is present.
	Exists(ctx context.Context, objectPath string) (bool, error)
}

// SourceObjectPath builds the conventional location of a full-game
// recording: {sourceGroup}/{gameID}/{videoID}_{filename}.
func SourceObjectPath(sourceGroup, gameID, videoID, filename string) string {
	return path.Join(sourceGroup, gameID, videoID+"_"+filename)
}

// ClipObjectPath builds the destination for a produced clip under the
// configured prefix: {prefix}/{clipID}.mp4.
func ClipObjectPath(prefix, clipID string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return clipID + ".mp4"
	}
	return path.Join(trimmed, clipID+".mp4")
}

// ValidateObjectPath rejects empty or absolute object paths early so a
// malformed spec fails before any network traffic.
func ValidateObjectPath(objectPath string) error {
	trimmed := strings.TrimSpace(objectPath)
	if trimmed == "" {
		return fmt.Errorf("object path is empty")
	}
	if strings.HasPrefix(trimmed, "/") {
		return fmt.Errorf("object path %q must be bucket-relative", objectPath)
	}
	return nil
}
