package verify

import "fmt"

const systemPrompt = "You are a strict fact checker with very high standards for accuracy."

const responseFormat = `Respond with a single JSON object:
{
    "is_true": true/false,
    "confidence": 0-100,
    "reasoning": "detailed reasoning, including evidence and doubts",
    "sources": ["source URL or name"],
    "notes": "additional remarks and warnings"
}`

const rubric = `Scoring rubric:
- 90-100: fully credible, backed by solid evidence
- 70-89: broadly credible, needs further verification
- 50-69: uncertain, open questions remain
- 30-49: low credibility, clear problems
- 0-29: not credible, serious errors or misleading`

func groundedPrompt(claim string) string {
	return fmt.Sprintf(`You are a professional fact checker for technology news.

Task: search the web and verify the following claim.

Claim: %s

Requirements:
1. Search for current, authoritative sources about the claim
2. Compare specific facts such as names, numbers, versions and dates
3. Point out anything exaggerated, misleading or inaccurate
4. Cite the URLs you relied on

%s

%s`, claim, rubric, responseFormat)
}

func rubricPrompt(claim string) string {
	return fmt.Sprintf(`You are a professional fact checker for technology news.

Task: strictly verify the truth of the following claim.

Claim: %s

Requirements:
1. Use your own knowledge to judge whether the claim is true
2. If the claim involves specific companies, products or technologies, give background and evidence
3. If the claim includes time information, judge whether it is plausible
4. Check for exaggerated, misleading or inaccurate statements
5. Verify data, numbers and version identifiers
6. Give a strict credibility score (0-100); only fully credible claims get a high score
7. Point out anything doubtful, unverified or wrong

%s

%s`, claim, rubric, responseFormat)
}
