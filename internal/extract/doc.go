// Package extract recovers structure from harvested content: links
// and titles from HTML pages, titles and dates from PDF files, and
// publication dates, circular numbers, and topic tags from the
// unstructured strings government portals publish them in.
package extract
