// Package archive stores a copy of each finished interview transcript in
// object storage. Archival is best effort and never blocks session end.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/supabase-go"
)

// SupabaseArchiver uploads rendered transcripts to a Supabase bucket.
type SupabaseArchiver struct {
	client *supabase.Client
	bucket string
}

func NewSupabaseArchiver(url, serviceKey, bucket string) (*SupabaseArchiver, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("archive: create supabase client: %w", err)
	}
	return &SupabaseArchiver{client: client, bucket: bucket}, nil
}

// ArchiveTranscript uploads the transcript under a session-scoped key.
func (a *SupabaseArchiver) ArchiveTranscript(ctx context.Context, sessionID, transcript string) error {
	key := fmt.Sprintf("transcript_%s_%d.txt", sessionID, time.Now().Unix())
	_, err := a.client.Storage.UploadFile(a.bucket, key, strings.NewReader(transcript))
	if err != nil {
		return fmt.Errorf("archive: upload transcript: %w", err)
	}
	return nil
}
