package mapping

import (
	"strconv"
)

// Manifest paths are dotted: "output.Sentence.charges[1].Charge.status".

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
