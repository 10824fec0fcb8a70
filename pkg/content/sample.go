package content

import (
	"time"

	"github.com/Salat-Tamas/whitespac3/pkg/models"
)

// Fixed fallback dataset served when the content backend is unreachable.
// The gateway never mutates it; accessor functions hand out copies.

var sampleTopics = []models.Topic{
	{
		ID:   1,
		Name: "Programming",
		Courses: []models.Course{
			{ID: 101, Name: "JavaScript Basics", Description: "Learn the fundamentals of JavaScript"},
			{ID: 102, Name: "Python for Beginners", Description: "Introduction to Python programming"},
			{ID: 103, Name: "Java Essential Training", Description: "Master core Java concepts and syntax"},
		},
	},
	{
		ID:   2,
		Name: "Data Science",
		Courses: []models.Course{
			{ID: 201, Name: "Statistics 101", Description: "Introduction to statistical analysis"},
			{ID: 202, Name: "Machine Learning Fundamentals", Description: "Learn basic ML concepts and applications"},
			{ID: 203, Name: "Data Visualization", Description: "Create compelling visual representations of data"},
		},
	},
	{
		ID:   3,
		Name: "Web Development",
		Courses: []models.Course{
			{ID: 301, Name: "HTML & CSS Basics", Description: "Build the structure and style of websites"},
			{ID: 302, Name: "React Framework", Description: "Create interactive UIs with React"},
			{ID: 303, Name: "Backend with Node.js", Description: "Server-side JavaScript development"},
		},
	},
}

var samplePosts = []models.Post{
	{
		ID:        "1",
		CourseID:  101,
		AuthorID:  "user_2YfK9gkEL7H8JD1g3cGKH4VlZFd",
		Title:     "Introduction to JavaScript Arrays",
		PreviewMD: "Arrays are fundamental data structures in JavaScript. Let's explore how they work and what you can do with them.",
		ContentMD: "# JavaScript Arrays\n\nArrays are ordered collections of values that you can access by index.\n\n## Creating Arrays\n\n```javascript\nconst fruits = ['apple', 'banana', 'orange'];\nconst numbers = [1, 2, 3, 4, 5];\n```\n\n## Array Methods\n\n- `push()` - Add items to the end\n- `pop()` - Remove the last item\n- `shift()` - Remove the first item\n- `splice()` - Add or remove items at any position\n\n## Array Iteration\n\n```javascript\nfruits.forEach(fruit => console.log(fruit));\nconst upperFruits = fruits.map(fruit => fruit.toUpperCase());\n```",
		CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		LikeCount: 42,
	},
	{
		ID:        "2",
		CourseID:  102,
		AuthorID:  "user_2MhKXj8FdP91RdG28kJpQ5VnZAc",
		Title:     "Python List Comprehensions",
		PreviewMD: "List comprehensions are a powerful feature in Python that allow you to create lists with a single line of code.",
		ContentMD: "# Python List Comprehensions\n\nList comprehensions provide a concise way to create lists based on existing iterables.\n\n## Basic Syntax\n\n```python\n[expression for item in iterable]\n[expression for item in iterable if condition]\n```\n\n## Examples\n\n```python\nsquares = [x**2 for x in range(10)]\nevens = [x for x in range(20) if x % 2 == 0]\n```\n\nList comprehensions are not only more concise but often faster than equivalent loops.",
		CreatedAt:   time.Date(2025, 2, 28, 14, 15, 0, 0, time.UTC),
		LikeCount:   37,
		LikedByUser: true,
	},
	{
		ID:        "3",
		CourseID:  301,
		AuthorID:  "user_1ZjN7vkMP3G2QF8h4bLrJ9DnXPe",
		Title:     "CSS Grid vs Flexbox",
		PreviewMD: "Understanding when to use CSS Grid and when to use Flexbox is essential for modern web development.",
		ContentMD: "# CSS Grid vs Flexbox\n\nBoth are powerful layout systems, but they serve different purposes.\n\n## Flexbox\n\nDesigned for one-dimensional layouts:\n\n```css\n.container {\n  display: flex;\n  justify-content: space-between;\n}\n```\n\n## Grid\n\nDesigned for two-dimensional layouts:\n\n```css\n.container {\n  display: grid;\n  grid-template-columns: repeat(3, 1fr);\n}\n```\n\nUse Flexbox for a single row or column, Grid for full page layouts.",
		CreatedAt: time.Date(2025, 2, 25, 10, 45, 0, 0, time.UTC),
		LikeCount: 28,
	},
}

var sampleComments = map[string][]models.Comment{
	"1": {
		{
			ID:         "c-101",
			Content:    "Great overview, the splice example finally made it click for me.",
			AuthorID:   "user_2MhKXj8FdP91RdG28kJpQ5VnZAc",
			AuthorName: "Dana",
			CreatedAt:  time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC),
		},
		{
			ID:        "c-102",
			Content:   "Would love a follow-up on typed arrays.",
			AuthorID:  "user_1ZjN7vkMP3G2QF8h4bLrJ9DnXPe",
			UserName:  "miki",
			CreatedAt: time.Date(2025, 3, 2, 8, 40, 0, 0, time.UTC),
		},
	},
	"2": {
		{
			ID:         "c-201",
			Content:    "Nested comprehensions get unreadable fast, use them sparingly.",
			AuthorID:   "user_2YfK9gkEL7H8JD1g3cGKH4VlZFd",
			AuthorName: "Alex",
			CreatedAt:  time.Date(2025, 2, 28, 19, 20, 0, 0, time.UTC),
		},
	},
}

func SampleTopics() []models.Topic {
	topics := make([]models.Topic, len(sampleTopics))
	copy(topics, sampleTopics)
	for i, topic := range topics {
		courses := make([]models.Course, len(topic.Courses))
		copy(courses, topic.Courses)
		topics[i].Courses = courses
	}

	return topics
}

func SamplePosts() []models.Post {
	posts := make([]models.Post, len(samplePosts))
	copy(posts, samplePosts)

	return posts
}

func SamplePost(id string) (models.Post, bool) {
	for _, post := range samplePosts {
		if post.ID == id {
			return post, true
		}
	}

	return models.Post{}, false
}

func SampleComments(postID string) []models.Comment {
	comments := make([]models.Comment, len(sampleComments[postID]))
	copy(comments, sampleComments[postID])

	return comments
}
