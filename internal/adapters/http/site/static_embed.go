package site

import _ "embed"

//go:embed static/index.html
var index []byte

func indexPage() []byte { return index }
