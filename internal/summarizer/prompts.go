package summarizer

const reportSystemPrompt = "You are a professional report writer. Create clear, well-structured reports."

const reportPrompt = `Write a comprehensive report based on the audio transcript and the template below.

Transcript:
---
%s
---

Template:
---
%s
---

Follow the template instructions and structure. Write in a professional tone suitable for a business document. Use markdown headings, bullet points and bold for key terms.`

const reviewSystemPrompt = "You are a transcript reviewer and formatter. You identify the speakers in a conversation and organize the text into paragraphs with clear speaker labels."

const reviewPrompt = `Review and format the transcript below:

1. Identify the different speakers and label them Speaker 1, Speaker 2, Speaker 3 and so on.
2. Break the text into paragraphs at topic changes and speaker transitions.
3. Start every paragraph with its speaker, like "Speaker X: <paragraph>", and separate paragraphs with a blank line.

Return only the formatted transcript.

Transcript:
%s`

const reviewMaxTokens = 10000
