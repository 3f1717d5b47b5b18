// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prismic

import (
	"fmt"
	"strconv"
	"strings"
)

// Predicate is a single query clause such as [at(document.type,"posts")].
type Predicate string

// At matches documents whose path equals value exactly.
func At(path, value string) Predicate {
	return Predicate(fmt.Sprintf("[at(%s,%s)]", path, strconv.Quote(value)))
}

// DocumentType matches documents of the given custom type.
func DocumentType(docType string) Predicate {
	return At("document.type", docType)
}

// UID matches the document of docType with the given UID.
func UID(docType, uid string) Predicate {
	return At("my."+docType+".uid", uid)
}

// query joins predicates into the q parameter format: [[p1][p2]].
func query(preds []Predicate) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, p := range preds {
		b.WriteString(string(p))
	}
	b.WriteByte(']')
	return b.String()
}

// Ordering sorts results by a field.
type Ordering struct {
	Field string
	Desc  bool
}

// orderings renders the orderings parameter: [field desc,other].
func orderings(os []Ordering) string {
	parts := make([]string, 0, len(os))
	for _, o := range os {
		if o.Desc {
			parts = append(parts, o.Field+" desc")
		} else {
			parts = append(parts, o.Field)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}
