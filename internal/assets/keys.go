package assets

import (
	"fmt"

	"github.com/fyrsmithlabs/assetd/internal/manifest"
)

// Object keys mirror the project tree layout:
//
//	{project}/{branch}/{data|models}/{asset_id}/versions/{version_id}.json
//	{project}/{branch}/{data|models}/{asset_id}/payloads/{version_id}
//	{project}/{branch}/{data|models}/{asset_id}/latest.json
//
// Every path component is storage-safe, so keys never need escaping.

func assetPrefix(project, branch string, kind manifest.Kind, assetID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", project, branch, kind.Dir(), assetID)
}

func versionsPrefix(project, branch string, kind manifest.Kind, assetID string) string {
	return assetPrefix(project, branch, kind, assetID) + "/versions"
}

func versionKey(project, branch string, kind manifest.Kind, assetID, versionID string) string {
	return versionsPrefix(project, branch, kind, assetID) + "/" + versionID + ".json"
}

func payloadKey(project, branch string, kind manifest.Kind, assetID, versionID string) string {
	return assetPrefix(project, branch, kind, assetID) + "/payloads/" + versionID
}

func latestKey(project, branch string, kind manifest.Kind, assetID string) string {
	return assetPrefix(project, branch, kind, assetID) + "/latest.json"
}
