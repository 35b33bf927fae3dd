package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/uptrace/bun"
)

// OriginalsDir holds uploaded originals below the media root.
const OriginalsDir = "original_images"

// Image is an uploaded picture with translated metadata.
type Image struct {
	bun.BaseModel `bun:"table:images,alias:img"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Title     string `bun:"title,notnull" json:"title"`
	TitleDE   string `bun:"title_de,notnull" json:"title_de"`
	TitleCS   string `bun:"title_cs,notnull" json:"title_cs"`
	Caption   string `bun:"caption,notnull" json:"caption"`
	CaptionDE string `bun:"caption_de,notnull" json:"caption_de"`
	CaptionCS string `bun:"caption_cs,notnull" json:"caption_cs"`

	File   string `bun:"file,notnull" json:"file"`
	Width  int    `bun:"width,notnull" json:"width"`
	Height int    `bun:"height,notnull" json:"height"`

	FocalPointX      *int `bun:"focal_point_x" json:"focal_point_x,omitempty"`
	FocalPointY      *int `bun:"focal_point_y" json:"focal_point_y,omitempty"`
	FocalPointWidth  *int `bun:"focal_point_width" json:"focal_point_width,omitempty"`
	FocalPointHeight *int `bun:"focal_point_height" json:"focal_point_height,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func (i *Image) Titles() i18n.Text {
	return i18n.Text{EN: i.Title, DE: i.TitleDE, CS: i.TitleCS}
}

func (i *Image) Captions() i18n.Text {
	return i18n.Text{EN: i.Caption, DE: i.CaptionDE, CS: i.CaptionCS}
}

// Filename is the stored file name without the originals directory.
func (i *Image) Filename() string {
	return strings.TrimPrefix(i.File, OriginalsDir+"/")
}

// FocalPointKey identifies the focal point a rendition was cropped for.
// Images without a complete focal point use the empty key.
func (i *Image) FocalPointKey() string {
	if i.FocalPointX == nil || i.FocalPointY == nil || i.FocalPointWidth == nil || i.FocalPointHeight == nil {
		return ""
	}
	return fmt.Sprintf("focus-%d-%d-%dx%d", *i.FocalPointX, *i.FocalPointY, *i.FocalPointWidth, *i.FocalPointHeight)
}

// Rendition is a resized variant of an image stored below the renditions
// directory. One exists per image, filter spec and focal point.
type Rendition struct {
	bun.BaseModel `bun:"table:image_renditions,alias:ren"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	ImageID       int64  `bun:"image_id,notnull,unique:image_renditions_key" json:"image_id"`
	FilterSpec    string `bun:"filter_spec,notnull,unique:image_renditions_key" json:"filter_spec"`
	FocalPointKey string `bun:"focal_point_key,notnull,unique:image_renditions_key" json:"focal_point_key"`
	File          string `bun:"file,notnull" json:"file"`
	Width         int    `bun:"width,notnull" json:"width"`
	Height        int    `bun:"height,notnull" json:"height"`
}

// Name is the base name of the rendition file.
func (r *Rendition) Name() string {
	return path.Base(r.File)
}
