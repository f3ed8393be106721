// Package textutil provides filename and title sanitization helpers.
//
// Downloaded media is named {safe title}_{source id}.{ext}; SafeTitle produces
// the title component and SanitizeFileName guards arbitrary filenames arriving
// over the API.
package textutil
