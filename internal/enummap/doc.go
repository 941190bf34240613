// Package enummap resolves raw source codes to normalized enum members.
//
// A Table is built once per $enum_mapping when a manifest loads. It is the
// inverse of the authored form: the manifest lists, for every member, the
// raw codes that map to it; the table answers raw code -> member. A raw
// code claimed by two members (or by a member and the ignore list) is
// ambiguous and rejected at load time.
package enummap
