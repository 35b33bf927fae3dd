package media

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strconv"
)

// GenerateSignature signs "{id}/{filter_spec}/" with HMAC-SHA1 and encodes
// the digest as padded URL-safe base64.
func GenerateSignature(imageID int64, filterSpec string, key []byte) string {
	return base64.URLEncoding.EncodeToString(signatureDigest(imageID, filterSpec, key))
}

// VerifySignature reports whether signature was produced for the image and
// filter spec with key.
func VerifySignature(signature string, imageID int64, filterSpec string, key []byte) bool {
	decoded, err := base64.URLEncoding.Strict().DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(decoded, signatureDigest(imageID, filterSpec, key))
}

func signatureDigest(imageID int64, filterSpec string, key []byte) []byte {
	mac := hmac.New(sha1.New, key)
	mac.Write([]byte(strconv.FormatInt(imageID, 10) + "/" + filterSpec + "/"))
	return mac.Sum(nil)
}

// RenditionURL builds the signed serving path of an image rendition:
// /images/{signature}/{id}/{filter_spec}/{filename}.
func RenditionURL(image *Image, filterSpec string, key []byte) string {
	signature := GenerateSignature(image.ID, filterSpec, key)
	return "/images/" + signature + "/" + strconv.FormatInt(image.ID, 10) + "/" +
		url.PathEscape(filterSpec) + "/" + url.PathEscape(image.Filename())
}
