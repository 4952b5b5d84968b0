package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/five82/shopdesk/internal/media"
)

const settingsPath = "/api/GiaoDien"

// Settings lists logos, banners and sliders. A zero typeCode lists all.
func (c *Client) Settings(ctx context.Context, typeCode int) ([]Setting, error) {
	var q url.Values
	if typeCode > 0 {
		q = url.Values{}
		q.Set("loaiGiaoDien", strconv.Itoa(typeCode))
	}
	page, err := getPage(ctx, c, settingsPath, q, c.toSetting)
	return page.Items, err
}

// Setting fetches one setting.
func (c *Client) Setting(ctx context.Context, id int64) (Setting, error) {
	return getOne(ctx, c, fmt.Sprintf("%s/%d", settingsPath, id), c.toSetting)
}

// SettingInput is the JSON body for create and update.
type SettingInput struct {
	Name            string `json:"tenGiaoDien" label:"Tên giao diện" validate:"required,max=200"`
	Type            int    `json:"loaiGiaoDien" label:"Loại giao diện" validate:"oneof=1 2 3"`
	Description     string `json:"moTa,omitempty" label:"Mô tả"`
	MetaTitle       string `json:"metaTitle,omitempty" label:"Meta title" validate:"max=70"`
	MetaDescription string `json:"metaDescription,omitempty" label:"Meta description" validate:"max=160"`
	MetaKeywords    string `json:"metaKeywords,omitempty" label:"Meta keywords"`
	Status          int    `json:"trangThai" label:"Trạng thái" validate:"oneof=0 1"`
}

// InputFrom copies the editable fields of s.
func InputFrom(s Setting) SettingInput {
	return SettingInput{
		Name:            s.Name,
		Type:            s.Type,
		Description:     s.Description,
		MetaTitle:       s.MetaTitle,
		MetaDescription: s.MetaDescription,
		MetaKeywords:    s.MetaKeywords,
		Status:          s.Status,
	}
}

// CreateSetting posts a new setting.
func (c *Client) CreateSetting(ctx context.Context, in SettingInput) error {
	return send(ctx, c, Request{Method: http.MethodPost, Path: settingsPath, Body: in})
}

// UpdateSetting replaces a setting. Activating a logo deactivates the
// others server-side.
func (c *Client) UpdateSetting(ctx context.Context, id int64, in SettingInput) error {
	return send(ctx, c, Request{Method: http.MethodPut, Path: fmt.Sprintf("%s/%d", settingsPath, id), Body: in})
}

// SetSettingStatus re-submits s with the given status.
func (c *Client) SetSettingStatus(ctx context.Context, s Setting, status int) error {
	in := InputFrom(s)
	in.Status = status
	return c.UpdateSetting(ctx, s.ID, in)
}

// DeleteSetting removes a setting.
func (c *Client) DeleteSetting(ctx context.Context, id int64) error {
	return send(ctx, c, Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s/%d", settingsPath, id)})
}

// MediaInput is an upload to a setting.
type MediaInput struct {
	File media.File
	Alt  string
	Link string
}

// UploadSettingMedia attaches a file to a setting.
func (c *Client) UploadSettingMedia(ctx context.Context, id int64, in MediaInput) error {
	form := media.NewForm().
		SetOptional("altMedia", in.Alt).
		SetOptional("linkMedia", in.Link).
		Add(media.FieldFile, in.File)
	return send(ctx, c, Request{Method: http.MethodPost, Path: fmt.Sprintf("%s/%d/upload-media", settingsPath, id), Form: form})
}
