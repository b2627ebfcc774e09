// Package links resolves Trac cross references to URLs.
//
// Every reference kind maps to a base template from configuration plus a
// kind specific suffix:
//
//	wiki        wiki + Name[#anchor]
//	ticket      main + ticket/N
//	report      main + report/N
//	source      main + browser/path[?rev=N][#L1]
//	doc         docs + path (source:docs/...)
//	log         code + path[?rev=N | ?revs=a-b]
//	titleindex  one wiki link per page below a prefix
//
// Known-name sets restrict which wiki pages, tickets and reports resolve.
// A nil set accepts every syntactically valid name.
package links
