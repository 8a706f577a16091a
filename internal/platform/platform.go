// Package platform knows the supported marketplaces and how to build a link
// to each one's search page.
package platform

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/windoze95/shopcompare-api/internal/models"
)

// genericSearchTemplate is used for codes with no marketplace of their own.
const genericSearchTemplate = "https://www.google.com/search?q=%s"

// Info describes one marketplace.
type Info struct {
	Code        models.PlatformCode `json:"code"`
	Name        string              `json:"name"`
	Brand       string              `json:"brand"`
	URLTemplate string              `json:"-"`
}

// PChome has no search endpoint we trust, so its entry is a site-restricted
// web search instead.
var platforms = []Info{
	{Code: models.PlatformMomo, Name: "momo", Brand: "momo", URLTemplate: "https://www.momoshop.com.tw/search/searchShop.jsp?keyword=%s"},
	{Code: models.PlatformPChome, Name: "PChome", Brand: "PChome", URLTemplate: "https://www.google.com/search?q=site%%3Apchome.com.tw+%s"},
	{Code: models.PlatformShopee, Name: "蝦皮", Brand: "Shopee", URLTemplate: "https://shopee.tw/search?keyword=%s"},
	{Code: models.PlatformCoupang, Name: "酷澎", Brand: "Coupang", URLTemplate: "https://www.coupang.com/np/search?q=%s"},
}

var byCode = func() map[models.PlatformCode]Info {
	m := make(map[models.PlatformCode]Info, len(platforms))
	for _, p := range platforms {
		m[p.Code] = p
	}
	return m
}()

// All returns the marketplace table in display order.
func All() []Info {
	out := make([]Info, len(platforms))
	copy(out, platforms)
	return out
}

// Lookup returns the marketplace registered under code.
func Lookup(code models.PlatformCode) (Info, bool) {
	info, ok := byCode[code]
	return info, ok
}

// Codes returns the codes an AI listing may carry.
func Codes() []string {
	codes := make([]string, len(platforms))
	for i, p := range platforms {
		codes[i] = string(p.Code)
	}
	return codes
}

// BuildSearchURL returns the search page URL for keyword on the marketplace
// identified by code. Unknown codes get a generic web search.
func BuildSearchURL(code models.PlatformCode, keyword string) string {
	encoded := EncodeKeyword(keyword)
	if info, ok := byCode[code]; ok {
		return fmt.Sprintf(info.URLTemplate, encoded)
	}
	return fmt.Sprintf(genericSearchTemplate, encoded)
}

// EncodeKeyword percent-encodes keyword for a query component. Spaces become
// %20 rather than '+', so the result matches what browsers produce.
func EncodeKeyword(keyword string) string {
	return strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
}
