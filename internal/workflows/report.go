package workflows

import (
	"fmt"
	"strings"
)

// Run reports take the place of the cards a flow attaches to its run: a
// short markdown summary of what was registered or retrieved.

// buildProducerReport renders the markdown report for a producer run.
func buildProducerReport(config ProducerConfig, result *ProducerResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Producer Run `%s`\n\n", result.RunID))
	b.WriteString(fmt.Sprintf("**Project:** `%s`  \n", config.Project))
	b.WriteString(fmt.Sprintf("**Flow:** `%s`  \n", config.Flow))
	b.WriteString(fmt.Sprintf("**Write branch:** `%s`\n\n", result.WriteBranch))

	b.WriteString("## Registered Assets\n\n")
	b.WriteString("| Kind | Asset | Version |\n")
	b.WriteString("|------|-------|--------|\n")
	b.WriteString(fmt.Sprintf("| data | `%s` | `%s` |\n", config.DataAssetID, result.DataVersionID))
	b.WriteString(fmt.Sprintf("| model | `%s` | `%s` |\n", config.ModelAssetID, result.ModelVersionID))
	b.WriteString("\n")

	b.WriteString("## Verification\n\n")
	b.WriteString(fmt.Sprintf("- Data asset: %s\n", verdict(result.DataVerified)))
	b.WriteString(fmt.Sprintf("- Model asset: %s\n", verdict(result.ModelVerified)))

	writeErrorSection(&b, result.Errors)

	return b.String()
}

// buildConsumerReport renders the markdown report for a consumer run.
func buildConsumerReport(config ConsumerConfig, result *ConsumerResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Consumer Run `%s`\n\n", result.RunID))
	b.WriteString(fmt.Sprintf("**Project:** `%s`  \n", config.Project))
	b.WriteString(fmt.Sprintf("**Flow:** `%s`\n\n", config.Flow))

	b.WriteString("## Retrieved Assets\n\n")
	b.WriteString("| Kind | Asset | Version | Branch | Size |\n")
	b.WriteString("|------|-------|---------|--------|------|\n")
	b.WriteString(retrievalRow("data", config.DataAssetID, result.DataRetrieved, result.DataVersionID, result.DataBranch, result.DataBytes))
	b.WriteString(retrievalRow("model", config.ModelAssetID, result.ModelRetrieved, result.ModelVersionID, result.ModelBranch, result.ModelBytes))
	b.WriteString("\n")

	if result.DataRetrieved && result.ModelRetrieved {
		b.WriteString("All asset retrievals succeeded.\n")
	} else {
		b.WriteString("Some asset retrievals failed.\n")
		writeErrorSection(&b, result.Errors)
	}

	return b.String()
}

func retrievalRow(kind, assetID string, found bool, versionID, branch string, size int) string {
	if !found {
		return fmt.Sprintf("| %s | `%s` | not found | - | - |\n", kind, assetID)
	}
	return fmt.Sprintf("| %s | `%s` | `%s` | `%s` | %d B |\n", kind, assetID, versionID, branch, size)
}

func verdict(ok bool) string {
	if ok {
		return "verified"
	}
	return "failed"
}

func writeErrorSection(b *strings.Builder, errs []string) {
	if len(errs) == 0 {
		return
	}
	b.WriteString("\n## Errors\n\n")
	for _, e := range errs {
		b.WriteString(fmt.Sprintf("- %s\n", e))
	}
}
