package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockResources fails requests whose resource type is listed in types.
// Config names are plural ("images", "fonts"); CDP types are singular.
func blockResources(page *rod.Page, types []string) (*rod.HijackRouter, error) {
	blocked := blockSet(types)
	router := page.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		if blocked[strings.ToLower(string(h.Request.Type()))] {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, err
	}
	go router.Run()
	return router, nil
}

func blockSet(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		switch t {
		case "images":
			t = "image"
		case "fonts":
			t = "font"
		case "stylesheets":
			t = "stylesheet"
		}
		if t != "" {
			set[t] = true
		}
	}
	return set
}
