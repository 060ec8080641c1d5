// Package metadata decodes the EXIF tags needed to locate and describe a photo.
package metadata
