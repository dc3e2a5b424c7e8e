package grpc

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// args reads typed fields from a request Struct. Missing and null fields
// read as zero values.
type args map[string]*structpb.Value

func argsOf(req *structpb.Struct) args {
	return args(req.GetFields())
}

func (a args) has(key string) bool {
	v, ok := a[key]
	if !ok {
		return false
	}
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	return !isNull
}

func (a args) str(key string) string {
	return a[key].GetStringValue()
}

func (a args) optStr(key string) *string {
	if !a.has(key) {
		return nil
	}
	s := a.str(key)
	return &s
}

func (a args) boolean(key string) bool {
	return a[key].GetBoolValue()
}

func (a args) integer(key string) (int64, error) {
	if !a.has(key) {
		return 0, nil
	}
	n := a[key].GetNumberValue()
	if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
		return 0, fmt.Errorf("%w: %s must be an integer", common.ErrorValidation, key)
	}
	return int64(n), nil
}

// bytes decodes a standard base64 field. The flag reports presence.
func (a args) bytes(key string) ([]byte, bool, error) {
	if !a.has(key) {
		return nil, false, nil
	}
	b, err := base64.StdEncoding.DecodeString(a.str(key))
	if err != nil {
		return nil, true, fmt.Errorf("%w: %s must be base64", common.ErrorValidation, key)
	}
	return b, true, nil
}

// strings returns a list field. The flag reports presence.
func (a args) strings(key string) ([]string, bool) {
	if !a.has(key) {
		return nil, false
	}
	values := a[key].GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.GetStringValue())
	}
	return out, true
}

func (a args) time(key string) (*time.Time, error) {
	if !a.has(key) {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, a.str(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 time", common.ErrorValidation, key)
	}
	return &t, nil
}

func reply(fields map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(fields)
}

func timeValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeValue(*t)
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringList(list []string) []any {
	out := make([]any, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}
	return out
}

func documentFields(d *models.DocumentSummary) map[string]any {
	return map[string]any{
		"id":               d.ID,
		"owner_id":         d.OwnerID,
		"parent_folder_id": optString(d.ParentFolderID),
		"name":             d.Name,
		"type":             d.Type,
		"file_extension":   d.FileExtension,
		"content_size":     d.ContentSize,
		"version_number":   d.VersionNumber,
		"is_public":        d.IsPublic,
		"is_deleted":       d.IsDeleted,
		"created_at":       timeValue(d.CreatedAt),
		"updated_at":       timeValue(d.UpdatedAt),
		"last_accessed_at": optTime(d.LastAccessedAt),
	}
}

func versionFields(v *models.DocumentVersion) map[string]any {
	return map[string]any{
		"version_number":     v.VersionNumber,
		"change_description": v.ChangeDescription,
		"author_id":          v.AuthorID,
		"content_size":       v.ContentSize,
		"created_at":         timeValue(v.CreatedAt),
	}
}

func folderFields(f *models.Folder) map[string]any {
	return map[string]any{
		"id":               f.ID,
		"parent_folder_id": optString(f.ParentFolderID),
		"name":             f.Name,
		"description":      f.Description,
		"color":            f.Color,
		"is_public":        f.IsPublic,
		"is_deleted":       f.IsDeleted,
		"document_count":   f.DocumentCount,
		"subfolder_count":  f.SubfolderCount,
		"created_at":       timeValue(f.CreatedAt),
	}
}

// grantFields omits the token; it is only returned when a grant is created.
func grantFields(g *models.ShareGrant) map[string]any {
	return map[string]any{
		"id":          g.ID,
		"document_id": g.DocumentID,
		"granted_by":  g.GrantedBy,
		"granted_to":  optString(g.GrantedTo),
		"permission":  string(g.Permission),
		"expires_at":  optTime(g.ExpiresAt),
		"is_active":   g.IsActive,
		"created_at":  timeValue(g.CreatedAt),
	}
}

func activityFields(e *models.ActivityEntry) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"document_id": optString(e.DocumentID),
		"action":      e.Action,
		"details":     e.Details,
		"created_at":  timeValue(e.CreatedAt),
	}
}

func listOf[T any](items []T, fields func(T) map[string]any) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, fields(it))
	}
	return out
}
