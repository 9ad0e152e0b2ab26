package llm

// Prompt is the fixed instruction sent with every page image.
const Prompt = `Extract all text from this book page image and convert it to markdown format.

Instructions:
1. Extract ALL visible text from the page
2. Remove any page numbers (typically at top or bottom of page)
3. Preserve the structure and formatting using markdown:
   - Use # for chapter titles
   - Use ## for section headings
   - Use ### for subsections
   - Use **bold** for emphasized text
   - Use *italic* for italicized text
   - Use bullet points (-) for lists
   - Preserve paragraph breaks
4. Do NOT add any commentary or notes about the image quality
5. Do NOT include page numbers in the output
6. If there are tables, format them as markdown tables
7. If there are images or figures, note them as: [Figure: brief description]

Output only the markdown text, nothing else.`
