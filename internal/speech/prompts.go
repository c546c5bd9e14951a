package speech

const speakerSystemPrompt = "You are an expert at analyzing transcripts and identifying the different speakers in a conversation."

const speakerUserPrompt = `Split the transcript below into paragraphs, one paragraph per continuous stretch of speech by a single speaker.

Guidelines:
1. Follow the natural breaks in the conversation.
2. Treat a question mark as a change of speaker: the sentence before it usually belongs to one person and the sentence after it to another.
3. Prefer descriptive names such as "Interviewer", "Expert", "Host" or "Guest". Otherwise use "Speaker 1", "Speaker 2" and so on.
4. Join consecutive pieces from the same speaker into one paragraph.
5. Keep every paragraph a complete thought. Do not drop or rephrase any words.

Answer with a JSON object of the form:
{"paragraphs": [{"speaker": "Speaker 1", "paragraph": "..."}]}

Transcript:
%s`
