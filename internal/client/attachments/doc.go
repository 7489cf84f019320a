// Package attachments is the pre-send holding area for files the user picked.
//
// A Stager keeps the selection in arrival order, classifies each file by its
// MIME type, formats its size for display and owns the preview handles of
// staged images. Entries leave the stager only through RemoveFile or Clear,
// and both release the previews they own.
package attachments
