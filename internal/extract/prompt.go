package extract

// ExtractionPrompt asks for every question and solution in a chapter
// PDF as a single JSON object matching the ChapterQA schema.
const ExtractionPrompt = `Extract every exam question and its solutions from the attached chapter PDF. Return a single JSON object with this shape:

{
  "questions": [
    {
      "question_number": "question number as printed (string)",
      "question_text": "full question text",
      "question_images": [{"description": "what the figure shows", "image_data": null}],
      "multiple_choice_options": {
        "A": "option A text with units",
        "B": "option B text with units",
        "C": "option C text with units",
        "D": "option D text with units"
      },
      "correct_answer": "A, B, C, or D",
      "customary_us_solution": {
        "method": "step-by-step solution method",
        "calculations": "mathematical calculations",
        "final_answer": "final answer with units",
        "images": []
      },
      "si_solution": {
        "method": "step-by-step solution method",
        "calculations": "mathematical calculations",
        "final_answer": "final answer with units",
        "images": []
      }
    }
  ]
}

Rules:
- Include every question in the chapter, in printed order
- Keep calculations verbatim, including units and intermediate values
- If the chapter gives only one solution per question, omit the other solution object
- Omit "question_images" and "images" when a question or solution has no figures
- Return ONLY the JSON object, no other text.`
