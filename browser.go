package main

import "github.com/pkg/browser"

func openBrowser(addr string) error {
	return browser.OpenURL(addr)
}
